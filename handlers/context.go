package handlers

import (
	"context"

	"github.com/akinalp/forum/models"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

// UserContextKey carries the authenticated *models.User. The auth
// middleware sets it.
const UserContextKey contextKey = "user"

// WithUser returns ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the authenticated member, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
