// Package database opens the SQLite store and applies the embedded
// migrations in filename order.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // pure-Go driver, registers "sqlite"
)

// Errors a half-applied migration produces when it is run again.
var recoverableErrors = []string{
	"duplicate column name",
}

// DB wraps the connection pool. *sql.DB is safe for concurrent use.
type DB struct {
	Conn *sql.DB
}

// New opens (creating if needed) the database at dbPath and applies every
// migration in migrationsFS that has not been applied yet.
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// foreign keys are off by default in SQLite
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.runMigrations(migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("[database] connected and migrations applied")
	return db, nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations applies *.sql files from migrationsFS in lexical order
// (001_init.sql, 002_...). Applied files are recorded in schema_migrations
// so non-idempotent statements never run twice.
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	for _, file := range sqlFiles {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		if err := db.execStatements(file, string(content)); err != nil {
			return err
		}

		if _, err := db.Conn.Exec(
			"INSERT INTO schema_migrations (filename) VALUES (?)", file,
		); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", file, err)
		}

		log.Printf("[database] migration applied: %s", file)
	}

	return nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migration rows: %w", err)
	}
	return applied, nil
}

// execStatements runs a migration one statement at a time so a
// recoverable failure can be skipped without aborting the file.
func (db *DB) execStatements(filename, content string) error {
	for i, stmt := range splitStatements(content) {
		if _, err := db.Conn.Exec(stmt); err != nil {
			errMsg := err.Error()
			recoverable := false
			for _, pattern := range recoverableErrors {
				if strings.Contains(errMsg, pattern) {
					recoverable = true
					break
				}
			}

			if recoverable {
				log.Printf("[database] %s: statement %d skipped (recoverable: %s)", filename, i+1, errMsg)
				continue
			}

			return fmt.Errorf("failed to execute migration %s (statement %d): %w", filename, i+1, err)
		}
	}
	return nil
}

// splitStatements splits SQL text on ';'. Semicolons inside single-quoted
// literals and inside CREATE TRIGGER ... BEGIN ... END blocks are kept;
// "--" comments are dropped.
func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	depth := 0

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if !inString && ch == '-' && i+1 < len(sql) && sql[i+1] == '-' {
			// line comment: skip to the newline, which is kept
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			if i < len(sql) {
				current.WriteByte('\n')
			}
			continue
		}

		if ch == '\'' {
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				current.WriteByte(ch)
				current.WriteByte(sql[i+1])
				i++
				continue
			}
			inString = !inString
		}

		if !inString && isWordAt(sql, i) {
			switch {
			case hasKeyword(sql, i, "BEGIN"):
				depth++
			case hasKeyword(sql, i, "END") && depth > 0:
				depth--
			}
		}

		if ch == ';' && !inString && depth == 0 {
			flush()
			continue
		}

		current.WriteByte(ch)
	}

	flush()
	return statements
}

// isWordAt reports whether position i starts a word.
func isWordAt(s string, i int) bool {
	return i == 0 || !isIdentByte(s[i-1])
}

// hasKeyword reports whether kw (upper case) appears at i as a whole word,
// ignoring case.
func hasKeyword(s string, i int, kw string) bool {
	end := i + len(kw)
	if end > len(s) || !strings.EqualFold(s[i:end], kw) {
		return false
	}
	return end == len(s) || !isIdentByte(s[end])
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
