package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/campusride"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{campusride.ErrInvalidEmail, http.StatusBadRequest},
		{campusride.ErrWeakPassword, http.StatusBadRequest},
		{campusride.ErrDuplicateUsername, http.StatusConflict},
		{campusride.ErrInvalidCredentials, http.StatusUnauthorized},
		{campusride.ErrEmailMismatch, http.StatusUnauthorized},
		{campusride.ErrCodeExpired, http.StatusGone},
		{campusride.ErrCodeMismatch, http.StatusBadRequest},
		{campusride.ErrNoSuchCode, http.StatusBadRequest},
		{campusride.ErrRouteNotFound, http.StatusNotFound},
		{campusride.ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("%w: smtp 421", campusride.ErrNotificationFailed), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		require.Equal(t, tt.status, StatusFor(tt.err), "err=%v", tt.err)
	}
}

func TestWriteErrorHidesInternalText(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: relation users does not exist"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	res := decodeResult(t, rec)
	require.False(t, res.Success)
	require.Equal(t, "internal error", res.Message)
}
