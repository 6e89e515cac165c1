// Package sqlstore holds the SQL shared by the sqlite and postgres providers.
// Queries are written with ? placeholders and rebound for the driver.
package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/julianstephens/habitloop/internal/migration"
)

var ErrNotOpen = errors.New("database is not open, call Init or Load first")

// Queries implements the data half of storage.Provider on top of an open
// database handle. Providers embed it and fill in DB once connected.
type Queries struct {
	DB     *sql.DB
	Driver migration.Driver
}

func (q *Queries) exec(query string, args ...any) (sql.Result, error) {
	if q.DB == nil {
		return nil, ErrNotOpen
	}
	return q.DB.Exec(q.Driver.Rebind(query), args...)
}

func (q *Queries) query(query string, args ...any) (*sql.Rows, error) {
	if q.DB == nil {
		return nil, ErrNotOpen
	}
	return q.DB.Query(q.Driver.Rebind(query), args...)
}

func (q *Queries) queryRow(query string, args ...any) (*sql.Row, error) {
	if q.DB == nil {
		return nil, ErrNotOpen
	}
	return q.DB.QueryRow(q.Driver.Rebind(query), args...), nil
}

func (q *Queries) begin() (*sql.Tx, error) {
	if q.DB == nil {
		return nil, ErrNotOpen
	}
	return q.DB.Begin()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
