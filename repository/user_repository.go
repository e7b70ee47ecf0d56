// Package repository is the data access layer. Services talk to the
// interfaces declared here; the sqlite* files implement them.
package repository

import (
	"context"

	"github.com/akinalp/forum/models"
)

// UserCriteria narrows a member listing.
type UserCriteria struct {
	// Text matches a substring of the username or display name.
	Text       string
	OnlyOnline bool
}

// UserRepository stores members and their activity counters.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error
	// ResetStatuses marks every member offline.
	ResetStatuses(ctx context.Context) error
	SetModerator(ctx context.Context, userID int64, moderator bool) error
	// RecordLogin appends to the login history and bumps login_count.
	RecordLogin(ctx context.Context, userID int64) error
	IncrementPostCount(ctx context.Context, userID int64) error
	Search(ctx context.Context, c UserCriteria, limit, offset int) ([]models.User, error)
	CountMatching(ctx context.Context, c UserCriteria) (int, error)
	// TopByPosts and TopByLogins rank members over the last sinceDays days,
	// or over all time when sinceDays is 0.
	TopByPosts(ctx context.Context, sinceDays, limit int) ([]models.UserStat, error)
	TopByLogins(ctx context.Context, sinceDays, limit int) ([]models.UserStat, error)
	Count(ctx context.Context) (int, error)
}
