package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens the SQLite database backing RadioWash and verifies the
// connection before handing it out. Pass ":memory:" for an ephemeral
// database, as the tests do.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database at %s is not reachable: %w", path, err)
	}

	return db, nil
}

// ConfigureDatabase applies the pool limits from the [database] config
// section. SQLite tolerates few concurrent writers, so max_open_conns
// stays small.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
