package middleware

import (
	"context"
	"net/http"
	"strings"

	pairlock "github.com/pairlock/pairlock"
)

type authResultContextKey struct{}

// AuthResultFromContext returns the validated identity injected by [Guard].
func AuthResultFromContext(ctx context.Context) (*pairlock.AuthResult, bool) {
	res, ok := ctx.Value(authResultContextKey{}).(*pairlock.AuthResult)
	return res, ok
}

// Guard wraps next with access token enforcement. Requests without a valid
// bearer token are rejected with 401; validated requests carry a
// [pairlock.AuthResult] in their context.
func Guard(engine *pairlock.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			res, err := engine.Validate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authResultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
