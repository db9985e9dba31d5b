// Package postgres persists entity tables into Postgres using pgx v5.
// Tables are created on demand and loaded with the COPY protocol, the
// fastest bulk path pgx offers.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simonwiles/patent-conversion/internal/storage"
)

// Sink writes tables into a Postgres database.
type Sink struct {
	pool *pgxpool.Pool

	// Schema, when set, qualifies every table name, e.g. "grants".
	Schema string
}

// New connects the pool and pings it so a bad DSN fails the run upfront.
func New(ctx context.Context, dsn string) (*Sink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Sink{pool: pool}, nil
}

// WriteTable creates the table when missing and bulk-loads the rows with
// COPY. All columns are TEXT; the mapping config carries no type
// information.
func (s *Sink) WriteTable(ctx context.Context, t storage.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}
	name := t.Name
	if s.Schema != "" {
		name = s.Schema + "." + name
	}
	if _, err := s.pool.Exec(ctx, createStmt(name, t.Columns)); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", name, err)
	}

	rows := make([][]any, len(t.Rows))
	for i, rec := range t.Rows {
		rows[i] = storage.Values(t.Columns, rec)
	}
	if _, err := s.pool.CopyFrom(ctx, splitFQN(name), t.Columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("postgres: copy into %s: %w", name, err)
	}
	return nil
}

func (s *Sink) Close() error {
	s.pool.Close()
	return nil
}

func createStmt(fqn string, cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgIdent(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgFQN(fqn), strings.Join(defs, ", "))
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "grants.patents" to
// "grants"."patents".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
