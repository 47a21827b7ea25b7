package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
)

type Authenticator interface {
	Authenticate(userID, credential string) (*domain.User, error)
}

type userContextKey struct{}

// RequireUser authenticates every request with HTTP Basic credentials and
// stores the user in the request context.
func RequireUser(auth Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, credential, ok := r.BasicAuth()
			if !ok {
				writeError(w, errors.ErrAuthenticationFailed)
				return
			}

			user, err := auth.Authenticate(userID, credential)
			if err != nil {
				handleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey{}).(*domain.User)
	return user
}

// currentUser returns the authenticated user or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, errors.ErrAuthenticationFailed)
		return nil, false
	}
	return user, true
}
