package middleware

import (
	"context"
	"net/http"

	"github.com/baechuer/homi/internal/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (domain.User, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth resolves Authorization: Bearer <session token> through the guard and
// injects the verified user into the request context.
func Auth(guard Authenticator, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := guard.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
