package middleware

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/nanayawb/kentecart/internal/rest"
	"github.com/nanayawb/kentecart/internal/types/user"

	"github.com/golang-jwt/jwt/v4"
)

var ErrForbidden = errors.New("forbidden")

// UserFinder is the slice of the storage layer auth needs.
type UserFinder interface {
	FindUserByLogin(ctx context.Context, login string) (*user.User, error)
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (w gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func GzipHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") == "gzip" {
			gzr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(rw, "Failed to create gzip reader", http.StatusBadRequest)
				return
			}
			defer gzr.Close()
			r.Body = io.NopCloser(gzr)
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			rw.Header().Set("Content-Encoding", "gzip")
			gzw := gzip.NewWriter(rw)
			defer gzw.Close()

			gzrw := gzipResponseWriter{Writer: gzw, ResponseWriter: rw}
			next.ServeHTTP(gzrw, r)
		} else {
			next.ServeHTTP(rw, r)
		}
	})
}

type ctxKeyUser struct{}

// JWTMiddleware authenticates the bearer token and puts the staff user into
// the request context. Authorization stays out of here: handlers call
// RequireRole explicitly so the capability each operation needs is visible
// at its call site.
func JWTMiddleware(secret []byte, repo UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				rest.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			tokenStr := strings.TrimPrefix(auth, "Bearer ")

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				rest.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			u, err := repo.FindUserByLogin(r.Context(), claims.Subject)
			if err != nil {
				rest.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser{}, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CurrentUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(ctxKeyUser{}).(*user.User)
	return u
}

func ContextWithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// RequireRole is the explicit per-operation capability check. Admins pass
// every check.
func RequireRole(ctx context.Context, role user.Role) error {
	u := CurrentUser(ctx)
	if u == nil {
		return ErrForbidden
	}
	if u.Role == role || u.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
