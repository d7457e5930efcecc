package middleware

import (
	"net/http"

	"joyeria-be/internal/auth"
	"joyeria-be/internal/logger"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type TokenParser interface {
	ParseAccessToken(token string) (*auth.Claims, error)
}

// AuthMiddleware puts the caller identity into the request context.
// Requests without a token pass through anonymously; a token that is present
// but invalid or expired is rejected with 401.
func AuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.ParseAccessToken(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Warn("rejected access token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				transport.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			ctx = logger.WithFields(ctx, zap.Uint("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth guards a route for authenticated users.
func RequireAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			transport.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next(w, r, ps)
	}
}

// RequireAdmin guards a route for the ADMIN role.
func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !utils.IsAdmin(r.Context()) {
			transport.WriteJSONError(w, "admin only", http.StatusForbidden)
			return
		}
		next(w, r, ps)
	})
}
