// Package store defines the record store contract that every backend
// (PocketBase, SQLite, PostgreSQL) must satisfy to serve student lookups.
//
// WHY AN INTERFACE?
// ─────────────────
// The lookup controller should not know or care which backend it is
// talking to. By depending only on Store:
//
//   - Switching backends = change the `store.backend` config key.
//     Zero controller changes.
//
//   - Writing tests = pass a fake or mock that satisfies the interface.
//     No real database or server needed.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/aanand-mishra/student-lookup/internal/types"
)

// Students is the collection (table) that holds student records.
const Students = "students"

// ErrMalformedRecord marks a backend response that could not be read as a
// record: wrong JSON shape, non-string fields, missing keys.
var ErrMalformedRecord = errors.New("store: malformed record")

// ErrInvalidQuery is returned before any I/O when a Query is unusable.
var ErrInvalidQuery = errors.New("store: invalid query")

// ErrDuplicateSID is returned by Writer.Insert when the sid is already
// taken.
var ErrDuplicateSID = errors.New("store: student with this sid already exists")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query is a filtered fetch: records of Collection whose Field equals
// Value, at most Limit of them.
//
// Value is always data. Backends must bind it as a parameter (SQL) or
// escape it as a literal (PocketBase filter), never splice it raw into the
// query text.
type Query struct {
	Collection string
	Field      string
	Value      string
	Limit      int
}

// BySID builds the single-record query used by the lookup controller.
func BySID(sid string) Query {
	return Query{
		Collection: Students,
		Field:      "sid",
		Value:      sid,
		Limit:      1,
	}
}

// Validate checks that Collection and Field are plain identifiers and
// Limit is positive. Identifiers cannot be bound as parameters, so they
// are restricted instead.
func (q Query) Validate() error {
	if !IsIdentifier(q.Collection) {
		return fmt.Errorf("%w: bad collection %q", ErrInvalidQuery, q.Collection)
	}
	if !IsIdentifier(q.Field) {
		return fmt.Errorf("%w: bad field %q", ErrInvalidQuery, q.Field)
	}
	if q.Limit < 1 {
		return fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// IsIdentifier reports whether s is usable as a collection or field name.
func IsIdentifier(s string) bool {
	return identifier.MatchString(s)
}

// Record is one raw record as returned by a backend, keyed by field name.
type Record map[string]any

// String returns the string field key. ok is false when the key is missing
// or holds a non-string value.
func (r Record) String(key string) (string, bool) {
	v, present := r[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Store is the read contract used by the lookup controller.
type Store interface {
	// Find returns the records matching q, at most q.Limit of them.
	// An empty, non-nil slice means the store was reached and nothing
	// matched.
	Find(ctx context.Context, q Query) ([]Record, error)
}

// Writer is implemented by backends that can also insert records. It is
// used by the seed command only.
type Writer interface {
	// Insert stores s in collection and returns the store-assigned ID.
	Insert(ctx context.Context, collection string, s types.Student) (string, error)
}

// StudentRecord converts s into the Record shape backends return, so
// that SQL backends and fakes produce exactly what PocketBase produces.
func StudentRecord(s types.Student) Record {
	return Record{
		"id":      s.ID,
		"sid":     s.SID,
		"name":    s.Name,
		"college": s.College,
		"major":   s.Major,
	}
}
