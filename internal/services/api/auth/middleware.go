package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/webchecker/backend/internal/auth"
)

type ctxKey int

const identityKey ctxKey = 1

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	Sub   string
	Email string
}

func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// SubjectFromCtx returns the owner id of the authenticated caller.
func SubjectFromCtx(ctx context.Context) (string, bool) {
	id, ok := IdentityFromCtx(ctx)
	return id.Sub, ok
}

// WithIdentity is a test hook for injecting an authenticated caller.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Middleware verifies the Authorization bearer token and, on success,
// attaches the caller identity to the request context. Verification
// failures never short-circuit the request: the request proceeds
// unauthenticated and the protected handlers answer 401 themselves.
// An identity already present on the context is never overwritten.
func Middleware(v *auth.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := IdentityFromCtx(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			token := bearer(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				log.Debug("bearer token rejected", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if claims.Sub == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx = context.WithValue(ctx, identityKey, Identity{Sub: claims.Sub, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
