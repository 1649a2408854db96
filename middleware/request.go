package middleware

import (
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrEthical07/campusride"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestContext attaches a request id, the client IP and the User-Agent
// to the request context. An inbound X-Request-ID is honoured when it is
// short enough; otherwise a random UUID is used.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := campusride.WithRequestID(r.Context(), id)
		ctx = campusride.WithClientIP(ctx, clientIP(r))
		if ua := r.UserAgent(); ua != "" {
			ctx = campusride.WithUserAgent(ctx, ua)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
