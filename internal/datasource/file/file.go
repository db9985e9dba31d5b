// Package file implements a local filesystem batch source.
//
// Batch files are read exactly once, front to back, so Open hints the
// kernel for sequential access. Bulk-data archives usually arrive
// gzip-compressed; a ".gz" suffix is decompressed transparently.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Local is a batch source backed by one file on disk.
type Local struct{ path string }

// NewLocal returns a source bound to path. Safe for concurrent use.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the batch file for reading. A pre-canceled context returns
// immediately without touching the filesystem; filesystem errors are
// wrapped with the path while keeping errors.Is(err, os.ErrNotExist)
// working for callers.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	readahead(f)
	if !strings.HasSuffix(l.path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return &gzipFile{zr: zr, f: f}, nil
}

type gzipFile struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipFile) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
