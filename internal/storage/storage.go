// Package storage defines the output side of a conversion run: a Sink
// receives fully extracted entity tables and persists them. Implementations
// live in subpackages (csvdir, sqlite, postgres); the conversion core
// depends only on the Sink interface.
//
// Sinks are constructed before any extraction work starts, so an unusable
// output target (unwritable directory, bad DSN) fails the run upfront
// instead of after minutes of parsing.
package storage

import (
	"context"

	"github.com/simonwiles/patent-conversion/internal/extract"
)

// Table is one entity's complete output: resolved column order plus every
// committed row. Rows may omit columns; sinks render absent values as empty
// (CSV) or NULL (SQL).
type Table struct {
	Name    string
	Columns []string
	Rows    []extract.Record
}

// Sink persists extracted tables.
type Sink interface {
	WriteTable(ctx context.Context, t Table) error
	Close() error
}

// Values projects a record onto the table's column order for SQL binding.
// Absent columns become nil so they load as NULL.
func Values(columns []string, rec extract.Record) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		if v, ok := rec[c]; ok {
			out[i] = v
		}
	}
	return out
}
