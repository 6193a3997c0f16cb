// Package auth guards the API with HMAC-signed bearer tokens.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sh44ni/telalalbedaya-sub000/internal/http/respond"
)

type ctxKey struct{}

// Middleware rejects requests without a valid bearer token signed with secret.
// An empty secret disables the check.
func Middleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		if len(key) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "missing auth token"})
				return
			}

			token, err := jwt.Parse(strings.TrimPrefix(h, "Bearer "), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("invalid signing method")
				}

				return key, nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				respond.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			subject, _ := token.Claims.GetSubject()

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, subject)))
		})
	}
}

// Subject returns the token subject of an authenticated request.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}
