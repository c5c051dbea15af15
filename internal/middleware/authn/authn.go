package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "whisperbox/internal/lib/api/response"
	"whisperbox/internal/lib/jwt"
	sl "whisperbox/internal/lib/logger"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// Session is the authenticated identity extracted from the bearer token.
type Session struct {
	UserID      int64
	Username    string
	IsVerified  bool
	IsAccepting bool
}

// New returns middleware that requires a valid Bearer session token and
// stores the typed session in the request context.
func New(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("not authenticated"))

				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("authorization header format must be Bearer {token}"))

				return
			}

			claims, err := jwt.ParseToken(parts[1], secret)
			if err != nil {
				log.Warn("invalid session token", sl.Err(err))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("not authenticated"))

				return
			}

			session := Session{
				UserID:      claims.UserID,
				Username:    claims.Username,
				IsVerified:  claims.IsVerified,
				IsAccepting: claims.IsAccepting,
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
