// Package postgres implements store.Store and store.Writer on PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/student-lookup/internal/store"
	"github.com/aanand-mishra/student-lookup/internal/types"
)

const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id      TEXT PRIMARY KEY,
		sid     TEXT NOT NULL UNIQUE,
		name    TEXT NOT NULL,
		college TEXT NOT NULL,
		major   TEXT NOT NULL
	)
`

// Postgres is a pool-backed record store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New connects to dsn, verifies the connection, and makes sure the
// students table exists.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to parse connection string: %w", err)
	}
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to create students table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes every connection in the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Find returns the rows of q.Collection whose q.Field equals q.Value.
// The value is bound as $1; identifiers are validated then sanitized by pgx.
func (p *Postgres) Find(ctx context.Context, q store.Query) ([]store.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, findSQL(q), q.Value, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	records := make([]store.Record, 0, q.Limit)
	for rows.Next() {
		var s types.Student
		if err := rows.Scan(&s.ID, &s.SID, &s.Name, &s.College, &s.Major); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		records = append(records, store.StudentRecord(s))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}

	return records, nil
}

// Insert stores s with a new uuid id.
func (p *Postgres) Insert(ctx context.Context, collection string, s types.Student) (string, error) {
	if !store.IsIdentifier(collection) {
		return "", fmt.Errorf("%w: bad collection %q", store.ErrInvalidQuery, collection)
	}

	id := uuid.NewString()
	query := fmt.Sprintf(
		`INSERT INTO %s (id, sid, name, college, major) VALUES ($1, $2, $3, $4, $5)`,
		pgx.Identifier{collection}.Sanitize(),
	)

	if _, err := p.pool.Exec(ctx, query, id, s.SID, s.Name, s.College, s.Major); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("failed to create student %s: %w", s.SID, store.ErrDuplicateSID)
		}
		return "", fmt.Errorf("failed to create student: %w", err)
	}

	return id, nil
}

func findSQL(q store.Query) string {
	return fmt.Sprintf(
		`SELECT id, sid, name, college, major FROM %s WHERE %s = $1 LIMIT $2`,
		pgx.Identifier{q.Collection}.Sanitize(),
		pgx.Identifier{q.Field}.Sanitize(),
	)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
