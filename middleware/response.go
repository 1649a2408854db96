package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/MrEthical07/campusride"
)

// Result is the uniform {success, message} response body.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusFor maps an engine error to its HTTP status code.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch campusride.KindOf(err) {
	case campusride.KindValidation, campusride.KindCodeMismatch:
		return http.StatusBadRequest
	case campusride.KindConflict:
		return http.StatusConflict
	case campusride.KindAuth:
		return http.StatusUnauthorized
	case campusride.KindExpired:
		return http.StatusGone
	case campusride.KindNotFound:
		return http.StatusNotFound
	case campusride.KindRateLimited:
		return http.StatusTooManyRequests
	case campusride.KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as {success:false, message} with the mapped status.
// Unknown errors never leak their text.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), Result{Success: false, Message: campusride.PublicMessage(err)})
}

// WriteOK writes {success:true, message}.
func WriteOK(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, Result{Success: true, Message: message})
}
