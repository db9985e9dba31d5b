// Package csvdir writes each entity table to <dir>/<entity>.csv, the
// default output format.
package csvdir

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/simonwiles/patent-conversion/internal/storage"
)

// Sink writes one CSV file per table into a directory.
type Sink struct {
	dir string
}

// New ensures dir exists and is writable. It probes with a throwaway file
// so a doomed run fails before extraction starts, not at write-out time.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csvdir: create output dir: %w", err)
	}
	probe, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return nil, fmt.Errorf("csvdir: output dir not writable: %w", err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return &Sink{dir: dir}, nil
}

// WriteTable writes the header row followed by every record in insertion
// order. Columns a record lacks are written empty.
func (s *Sink) WriteTable(ctx context.Context, t storage.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, t.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvdir: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("csvdir: write header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for _, rec := range t.Rows {
		for i, c := range t.Columns {
			row[i] = rec[c]
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csvdir: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvdir: flush %s: %w", path, err)
	}
	return f.Close()
}

func (s *Sink) Close() error { return nil }
