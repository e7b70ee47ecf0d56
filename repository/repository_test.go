package repository

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/forum/database"
	"github.com/akinalp/forum/models"
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

func createUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func createMessage(t *testing.T, repo ForumRepository, authorID, parentID int64, title, content string) *models.ForumMessage {
	t.Helper()
	m := &models.ForumMessage{AuthorID: authorID, ParentID: parentID, Title: title, Content: content}
	require.NoError(t, repo.Create(context.Background(), m))
	return m
}

func ptr(v int64) *int64 { return &v }
