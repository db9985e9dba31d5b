// Package sqlite persists entity tables into a SQLite database using
// database/sql. SQLite has no bulk-load API, so each table is written with
// a prepared INSERT inside one transaction, which keeps throughput
// acceptable for batch volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/simonwiles/patent-conversion/internal/storage"
)

// Sink writes tables into one SQLite database file.
type Sink struct {
	db *sql.DB
}

// New opens dsn and pings it so a bad path fails the run upfront.
//
// The DSN is passed straight to database/sql, e.g.:
//
//	"file:grants.db?cache=shared"
//	"grants.db"
func New(ctx context.Context, dsn string) (*Sink, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Sink{db: db}, nil
}

// WriteTable creates the table when missing and inserts every row in one
// transaction. All columns are TEXT: values arrive as already-normalized
// strings and typed columns would force per-schema DDL the mapping config
// does not carry.
func (s *Sink) WriteTable(ctx context.Context, t storage.Table) error {
	if len(t.Columns) == 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, createStmt(t.Name, t.Columns)); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", t.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertStmt(t.Name, t.Columns))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range t.Rows {
		if _, err := stmt.ExecContext(ctx, storage.Values(t.Columns, rec)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite: insert into %s: %w", t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit %s: %w", t.Name, err)
	}
	return nil
}

func (s *Sink) Close() error { return s.db.Close() }

func createStmt(table string, cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = ident(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", ident(table), strings.Join(defs, ", "))
}

func insertStmt(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = ident(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func ident(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
