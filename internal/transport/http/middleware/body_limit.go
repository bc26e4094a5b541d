package middleware

import (
	"net/http"

	"github.com/baechuer/homi/internal/domain"
)

const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimit caps request bodies. A declared oversize body is rejected up front;
// an undeclared one fails in DecodeJSON once the reader hits the cap.
func BodyLimit(maxBytes int64, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeErr(w, r, domain.ErrInvalidField("body", "Request body too large."))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
