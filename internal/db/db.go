package db

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

// Open connects with either the sqlite3 or the pgx driver. All queries in the
// services use $N placeholders, which both drivers accept, so the rest of the
// code does not care which engine is behind the pool.
func Open(driver, dsn string) (*sql.DB, error) {
	d, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// sqlite serialises writers anyway; a single connection also keeps
		// ":memory:" databases from splitting per connection.
		d.SetMaxOpenConns(1)
	}
	return d, d.Ping()
}

func Migrate(d *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users(
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions(
			session_key TEXT PRIMARY KEY,
			user_id TEXT UNIQUE NOT NULL REFERENCES users(id),
			expired_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts(
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS post_topics(
			post_id TEXT NOT NULL REFERENCES posts(id),
			topic TEXT NOT NULL,
			PRIMARY KEY(post_id, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS likes_dislikes(
			post_id TEXT NOT NULL REFERENCES posts(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			mark BOOLEAN NOT NULL,
			PRIMARY KEY(post_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments(
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL REFERENCES posts(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// IsDuplicate reports whether err is a unique constraint violation, for
// whichever driver produced it.
func IsDuplicate(err error) bool {
	var sErr sqlite3.Error
	if errors.As(err, &sErr) {
		return sErr.Code == sqlite3.ErrConstraint
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
