package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/goVerify/jwt"
)

type operatorContextKey struct{}

// OperatorFromContext returns the claims stored by [RequireOperator].
func OperatorFromContext(ctx context.Context) (*jwt.OperatorClaims, bool) {
	claims, ok := ctx.Value(operatorContextKey{}).(*jwt.OperatorClaims)
	return claims, ok
}

// RequireOperator rejects requests without a valid operator token. The
// rejection handler writes the response; a nil handler writes a bare 401.
func RequireOperator(tokens *jwt.Manager, reject http.HandlerFunc) func(http.Handler) http.Handler {
	if reject == nil {
		reject = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil {
				reject(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(w, r)
				return
			}

			claims, err := tokens.ParseOperator(token)
			if err != nil {
				reject(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), operatorContextKey{}, claims)
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
