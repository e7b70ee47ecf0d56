package services

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/forum/database"
	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/repository"
	"github.com/akinalp/forum/ws"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "forum.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// recorder is an ws.EventPublisher that keeps every broadcast.
type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) BroadcastToAll(event ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) BroadcastToUser(_ int64, event ws.Event) { r.BroadcastToAll(event) }

func (r *recorder) GetOnlineUserIDs() []int64 { return nil }

func (r *recorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Op
	}
	return out
}

func seedUser(t *testing.T, repo repository.UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
