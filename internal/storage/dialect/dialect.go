// Package dialect captures the few SQL differences the segment store meets
// between local SQLite files and a Postgres replica of the story tables.
package dialect

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Dialect describes one database flavor.
type Dialect struct {
	// Name is the canonical flavor, "sqlite" or "postgres".
	Name string
	// Driver is the database/sql driver registered for it.
	Driver string
	// BoolType is the column type for flags such as is_ai_generated.
	BoolType string
	// Setup runs once on every new connection pool.
	Setup []string

	bindType int
}

// Rebind rewrites ? placeholders into the flavor's bind style.
func (d *Dialect) Rebind(query string) string {
	return sqlx.Rebind(d.bindType, query)
}

var (
	SQLite = &Dialect{
		Name:     "sqlite",
		Driver:   "sqlite",
		BoolType: "INTEGER",
		Setup:    []string{"PRAGMA foreign_keys=ON"},
		bindType: sqlx.QUESTION,
	}
	Postgres = &Dialect{
		Name:     "postgres",
		Driver:   "pgx",
		BoolType: "BOOLEAN",
		bindType: sqlx.DOLLAR,
	}
)

// ForDriver resolves the store.driver setting. Common aliases are accepted.
func ForDriver(name string) (*Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %q", name)
	}
}
