package app

import (
	"context"
	"net/http"
	"strings"

	"mingle/internal/common"
)

type userContext struct {
	userID string
	name   string
	email  string
}

type contextKey string

const userKey = contextKey("user")

// userIdentity guards every protected endpoint. It resolves the bearer token
// before any data is touched; a missing or invalid token short-circuits with
// 401. Tokens have the form "<session key>|<user id>".
func (a *App) userIdentity(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setHeaders(w)

		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, prefix) {
			handleError(w, common.UnauthorizedError(nil, "missing bearer token"))
			return
		}

		xs := strings.SplitN(strings.TrimPrefix(header, prefix), "|", 2)
		if len(xs) != 2 {
			handleError(w, common.UnauthorizedError(nil, "malformed bearer token"))
			return
		}

		u, err := a.userService.CheckSession(xs[0], xs[1])
		if err != nil {
			handleError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, userContext{userID: u.ID, name: u.Name, email: u.Email})
		next(w, r.WithContext(ctx))
	})
}

func corsMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
