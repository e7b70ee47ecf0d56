// Package middleware holds the func(next http.Handler) http.Handler layers
// wrapped around handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/akinalp/forum/handlers"
	"github.com/akinalp/forum/pkg"
	"github.com/akinalp/forum/pkg/i18n"
	"github.com/akinalp/forum/services"
)

type AuthMiddleware struct {
	authService services.AuthService
}

func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Require rejects requests without a valid "Authorization: Bearer <jwt>".
// The member is reloaded from the database so deleted accounts and
// revoked moderator rights take effect before the token expires.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		unauthorized := i18n.FromRequest(r).T("auth.unauthorized")

		authHeader := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, unauthorized)
			return
		}

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, unauthorized)
			return
		}

		user, err := m.authService.GetUser(r.Context(), claims.UserID)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, unauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}

// RequireModerator must run after Require.
func RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := handlers.UserFromContext(r.Context())
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, i18n.FromRequest(r).T("auth.unauthorized"))
			return
		}
		if !user.IsModerator {
			pkg.ErrorWithMessage(w, http.StatusForbidden, i18n.FromRequest(r).T("forum.moderatorOnly"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
