// Package sqlite provides a SQLite-backed implementation of store.Store
// and store.Writer using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk. There is no
// network and no separate server process, which makes it the backend of
// choice for local runs and demos.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
)

// SQLite is the concrete implementation of store.Store.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, creates the students table if
// it does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet: it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   id     : opaque record id (uuid), assigned on insert
	//   sid    : the student-facing lookup key, unique
	//   name, college, major: display fields
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id      TEXT PRIMARY KEY,
			sid     TEXT NOT NULL UNIQUE,
			name    TEXT NOT NULL,
			college TEXT NOT NULL,
			major   TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Find runs the filtered fetch described by q.
//
// Table and column names cannot be placeholders, so they come only from a
// validated Query and are quoted. The user's value always goes through ?,
// where the driver sends it separately from the SQL text.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, sid, name, college, major FROM %s WHERE %s = ? LIMIT ?`,
		quoteIdent(q.Collection), quoteIdent(q.Field),
	)

	stmt, err := s.Db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Find: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, q.Value, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("Find: query: %w", err)
	}
	defer rows.Close()

	records := make([]store.Record, 0, q.Limit)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.SID,
			&student.Name,
			&student.College,
			&student.Major,
		); err != nil {
			return nil, fmt.Errorf("Find: scan row: %w", err)
		}

		records = append(records, store.StudentRecord(student))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Find: rows iteration: %w", err)
	}

	return records, nil
}

// Insert adds a student row with a freshly generated id.
func (s *SQLite) Insert(ctx context.Context, collection string, student types.Student) (string, error) {
	if !store.IsIdentifier(collection) {
		return "", fmt.Errorf("%w: bad collection %q", store.ErrInvalidQuery, collection)
	}

	id := uuid.NewString()

	stmt, err := s.Db.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (id, sid, name, college, major) VALUES (?, ?, ?, ?, ?)",
		quoteIdent(collection),
	))
	if err != nil {
		return "", fmt.Errorf("Insert: prepare: %w", err)
	}
	defer stmt.Close()

	// Argument order matches the column list above.
	if _, err := stmt.ExecContext(ctx, id, student.SID, student.Name, student.College, student.Major); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("Insert: %s: %w", student.SID, store.ErrDuplicateSID)
		}
		return "", fmt.Errorf("Insert: exec: %w", err)
	}

	return id, nil
}

// isUniqueViolation reports whether err is the UNIQUE constraint on sid.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// quoteIdent wraps an already validated identifier in double quotes.
func quoteIdent(name string) string {
	return `"` + name + `"`
}
