package main

import (
	"database/sql"

	"github.com/akinalp/forum/repository"
)

// Repositories groups every repository so wire-up functions take one
// argument instead of many.
type Repositories struct {
	User  repository.UserRepository
	Forum repository.ForumRepository
}

// initRepositories shares conn between repositories; *sql.DB is a pool and
// safe for concurrent use.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		User:  repository.NewSQLiteUserRepo(conn),
		Forum: repository.NewSQLiteForumRepo(conn),
	}
}
