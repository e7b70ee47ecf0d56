package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/forum/models"
	"github.com/akinalp/forum/pkg"
)

func strPtr(s string) *string { return &s }

func TestUserCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	u := &models.User{Username: "Alice", DisplayName: strPtr("Alice A."), PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, models.UserStatusOffline, u.Status)
	assert.Equal(t, "en", u.Language)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err, "usernames are case-insensitive")
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Nil(t, got.LastLoginAt)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", *got.DisplayName)

	_, err = repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	err = repo.Create(ctx, &models.User{Username: "ALICE", PasswordHash: "x"})
	assert.ErrorIs(t, err, pkg.ErrAlreadyExists)
}

func TestUserCounters(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()
	u := createUser(t, repo, "alice")

	require.NoError(t, repo.RecordLogin(ctx, u.ID))
	require.NoError(t, repo.RecordLogin(ctx, u.ID))
	require.NoError(t, repo.IncrementPostCount(ctx, u.ID))
	require.NoError(t, repo.UpdateStatus(ctx, u.ID, models.UserStatusOnline))
	require.NoError(t, repo.SetModerator(ctx, u.ID, true))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.LoginCount)
	assert.Equal(t, 1, got.PostCount)
	assert.Equal(t, models.UserStatusOnline, got.Status)
	assert.NotNil(t, got.LastLoginAt)
	assert.True(t, got.IsModerator)

	require.NoError(t, repo.ResetStatuses(ctx))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusOffline, got.Status)

	assert.ErrorIs(t, repo.IncrementPostCount(ctx, 404), pkg.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 404, models.UserStatusOnline), pkg.ErrNotFound)
}

func TestUserSearch(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "alina", "bob", "al_x"} {
		createUser(t, repo, name)
	}
	bob, err := repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, bob.ID, models.UserStatusOnline))

	names := func(c UserCriteria, limit, offset int) []string {
		users, err := repo.Search(ctx, c, limit, offset)
		require.NoError(t, err)
		out := []string{}
		for _, u := range users {
			assert.Empty(t, u.PasswordHash)
			out = append(out, u.Username)
		}
		return out
	}

	assert.Equal(t, []string{"al_x", "alice", "alina", "bob", "carol"}, names(UserCriteria{}, 10, 0))
	assert.Equal(t, []string{"alice", "alina"}, names(UserCriteria{}, 2, 1))
	assert.Equal(t, []string{"al_x", "alice", "alina"}, names(UserCriteria{Text: "al"}, 10, 0))
	assert.Equal(t, []string{"al_x"}, names(UserCriteria{Text: "l_"}, 10, 0), "underscore is literal")
	assert.Equal(t, []string{"bob"}, names(UserCriteria{OnlyOnline: true}, 10, 0))
	assert.Equal(t, []string{}, names(UserCriteria{Text: "al", OnlyOnline: true}, 10, 0))

	n, err := repo.CountMatching(ctx, UserCriteria{Text: "al"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestUserTopRankings(t *testing.T) {
	db := openTestDB(t)
	users := NewSQLiteUserRepo(db.Conn)
	forum := NewSQLiteForumRepo(db.Conn)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	createUser(t, users, "idle")

	for i := 0; i < 3; i++ {
		createMessage(t, forum, bob.ID, 0, "t", "c")
		require.NoError(t, users.IncrementPostCount(ctx, bob.ID))
	}
	createMessage(t, forum, alice.ID, 0, "t", "c")
	require.NoError(t, users.IncrementPostCount(ctx, alice.ID))

	require.NoError(t, users.RecordLogin(ctx, alice.ID))
	require.NoError(t, users.RecordLogin(ctx, alice.ID))
	require.NoError(t, users.RecordLogin(ctx, bob.ID))

	// an old login that only the all-time ranking sees
	_, err := db.Conn.Exec(`INSERT INTO user_logins (user_id, created_at) VALUES (?, datetime('now', '-30 days'))`, bob.ID)
	require.NoError(t, err)
	_, err = db.Conn.Exec(`INSERT INTO user_logins (user_id, created_at) VALUES (?, datetime('now', '-30 days'))`, bob.ID)
	require.NoError(t, err)
	_, err = db.Conn.Exec(`UPDATE users SET login_count = login_count + 2 WHERE id = ?`, bob.ID)
	require.NoError(t, err)

	byPosts, err := users.TopByPosts(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, byPosts, 2, "members without posts are not ranked")
	assert.Equal(t, "bob", byPosts[0].Username)
	assert.Equal(t, 3, byPosts[0].Score)
	assert.Equal(t, "alice", byPosts[1].Username)

	recentPosts, err := users.TopByPosts(ctx, 7, 1)
	require.NoError(t, err)
	require.Len(t, recentPosts, 1)
	assert.Equal(t, bob.ID, recentPosts[0].UserID)

	allTime, err := users.TopByLogins(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, allTime, 2)
	assert.Equal(t, "bob", allTime[0].Username)
	assert.Equal(t, 3, allTime[0].Score)

	lastWeek, err := users.TopByLogins(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, lastWeek, 2)
	assert.Equal(t, "alice", lastWeek[0].Username)
	assert.Equal(t, 2, lastWeek[0].Score)
	assert.Equal(t, 1, lastWeek[1].Score)
}
