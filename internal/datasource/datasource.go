// Package datasource abstracts where a batch file comes from. The
// conversion reads one stream per run; implementations cover local disk
// (file) and the USPTO bulk-data site (httpds).
package datasource

import (
	"context"
	"io"
)

type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
