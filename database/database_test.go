package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := New(filepath.Join(t.TempDir(), "forum.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSplitStatements(t *testing.T) {
	sqlText := `
CREATE TABLE a (x TEXT DEFAULT 'a;b');
INSERT INTO a VALUES ('it''s; fine');
CREATE TRIGGER t AFTER INSERT ON a BEGIN
    INSERT INTO b VALUES (1);
    INSERT INTO b VALUES (2);
END;
SELECT 1`

	stmts := splitStatements(sqlText)
	require.Len(t, stmts, 4)
	assert.Equal(t, "CREATE TABLE a (x TEXT DEFAULT 'a;b')", stmts[0])
	assert.Equal(t, "INSERT INTO a VALUES ('it''s; fine')", stmts[1])
	assert.Contains(t, stmts[2], "INSERT INTO b VALUES (2);")
	assert.True(t, len(stmts[2]) > 0 && stmts[2][len(stmts[2])-3:] == "END")
	assert.Equal(t, "SELECT 1", stmts[3])
}

func TestSplitStatementsIgnoresKeywordFragments(t *testing.T) {
	stmts := splitStatements("UPDATE x SET ended = 1; SELECT begins FROM y;")
	assert.Equal(t, []string{"UPDATE x SET ended = 1", "SELECT begins FROM y"}, stmts)
}

func TestSplitStatementsDropsLineComments(t *testing.T) {
	sqlText := `-- Members. Counters are denormalized; history lives elsewhere.
CREATE TABLE a (
    x TEXT DEFAULT '--not a comment' -- trailing; note
);
-- end of file; nothing here`

	stmts := splitStatements(sqlText)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "CREATE TABLE a (")
	assert.Contains(t, stmts[0], "'--not a comment'")
	assert.NotContains(t, stmts[0], "denormalized")
	assert.NotContains(t, stmts[0], "trailing")
}

func TestEmbeddedMigrationsApply(t *testing.T) {
	db := openTestDB(t)

	var n int
	require.NoError(t, db.Conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE name IN ('users', 'user_logins', 'forum_messages', 'forum_messages_fts')`,
	).Scan(&n))
	assert.Equal(t, 4, n)
}

func TestNewAppliesMigrationsOnce(t *testing.T) {
	migrations, err := fs.Sub(EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "forum.db")

	db, err := New(path, migrations)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening must not re-run 001_init.sql
	db, err = New(path, migrations)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestFTSTriggersIndexMessages(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Conn.Exec(`INSERT INTO users (username, password_hash) VALUES ('alice', 'x')`)
	require.NoError(t, err)
	_, err = db.Conn.Exec(`INSERT INTO forum_messages (author_id, title, content) VALUES (1, 'Gardening', 'tomatoes and basil')`)
	require.NoError(t, err)

	var id int64
	require.NoError(t, db.Conn.QueryRow(
		`SELECT rowid FROM forum_messages_fts WHERE forum_messages_fts MATCH '"basil"'`,
	).Scan(&id))
	assert.Equal(t, int64(1), id)

	_, err = db.Conn.Exec(`UPDATE forum_messages SET content = 'peppers' WHERE id = 1`)
	require.NoError(t, err)

	err = db.Conn.QueryRow(
		`SELECT rowid FROM forum_messages_fts WHERE forum_messages_fts MATCH '"basil"'`,
	).Scan(&id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestWithTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	errBoom := errors.New("boom")
	err := WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES ('bob', 'x')`); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	var n int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 0, n, "rolled back")

	err = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES ('bob', 'x')`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 1, n)

	assert.Panics(t, func() {
		_ = WithTx(ctx, db.Conn, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES ('carol', 'x')`)
			panic("kaboom")
		})
	})
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM users").Scan(&n))
	assert.Equal(t, 1, n)
}
