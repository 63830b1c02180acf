package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/huaxuan-books/bookstore/internal/auth"
	"github.com/huaxuan-books/bookstore/internal/orders"
	"github.com/huaxuan-books/bookstore/internal/users"
)

type ctxKey int

const userKey ctxKey = iota

// RequireUser rejects requests without a valid bearer token and stores the
// resolved user on the request context.
func RequireUser(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				Fail(w, orders.ErrAuthFailed)
				return
			}
			u, err := v.Verify(r.Context(), token)
			if err != nil {
				Fail(w, orders.ErrAuthFailed)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func currentUser(r *http.Request) *users.User {
	u, _ := r.Context().Value(userKey).(*users.User)
	return u
}
