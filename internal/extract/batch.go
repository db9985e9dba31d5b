package extract

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/simonwiles/patent-conversion/internal/metrics"
	"github.com/simonwiles/patent-conversion/internal/schema"
	"github.com/simonwiles/patent-conversion/internal/xmldoc"
)

// DefaultDocIDPath locates the grant number in red-book documents. Used to
// label failure reports when no explicit path is configured.
const DefaultDocIDPath = "SDOBI/B100/B110/DNUM/PDAT"

// Logger is the logging interface used by the batch runner. *log.Logger
// satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(format string, v ...any) {}

// Failure describes one skipped document. Digest is the xxh3 hash of the
// raw bytes, so a skipped document can be located again in the batch file
// without relying on a parseable identifier.
type Failure struct {
	Index  int
	DocID  string
	Digest string
	Err    error
}

// Summary is the accounting for one batch run.
type Summary struct {
	Processed int
	Failed    int
	Failures  []Failure
}

// Runner drives a whole batch file through extraction. Malformed or
// schema-violating documents are logged and skipped; the rest of the batch
// is unaffected.
type Runner struct {
	Config *schema.Config
	Store  *TableStore

	// Logger receives progress and per-failure lines. Nil disables logging.
	Logger Logger

	// Job labels metrics and log lines, e.g. the batch file name.
	Job string

	// DocIDPath overrides DefaultDocIDPath for failure labeling.
	DocIDPath string

	// Progress > 0 logs a progress line every Progress documents.
	Progress int
}

// Run splits src into documents and extracts each one in order. The
// returned error is nil unless the batch itself is unreadable or ctx is
// canceled; per-document failures are reported in the Summary only.
func (r *Runner) Run(ctx context.Context, src io.Reader) (Summary, error) {
	ex := &Extractor{Config: r.Config, Store: r.Store}
	sp := xmldoc.NewSplitter(src)

	var sum Summary
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		raw, err := sp.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("extract: read batch: %w", err)
		}
		start := time.Now()
		root, docErr := xmldoc.Parse(raw)
		r.account(&sum, ex, i, raw, root, docErr, time.Since(start))
	}
	r.recordRows()
	return sum, nil
}

// account extracts one parsed document and folds the outcome into sum. It
// is the single bookkeeping path shared by Run and RunParallel: parseDur is
// the time already spent parsing, extraction time is added here.
func (r *Runner) account(sum *Summary, ex *Extractor, index int, raw []byte, root *xmldoc.Element, docErr error, parseDur time.Duration) {
	start := time.Now()
	if docErr == nil {
		docErr = ex.Document(root)
	}
	metrics.RecordDocument(r.Job, docErr, parseDur+time.Since(start))

	sum.Processed++
	if docErr != nil {
		sum.Failed++
		f := Failure{
			Index:  index,
			DocID:  r.docIdentity(root, index),
			Digest: fmt.Sprintf("%016x", xxh3.Hash(raw)),
			Err:    docErr,
		}
		sum.Failures = append(sum.Failures, f)
		r.logger().Printf("level=warn msg=\"document skipped\" job=%s doc=%s index=%d digest=%s err=%q",
			r.Job, f.DocID, f.Index, f.Digest, docErr)
		return
	}
	if r.Progress > 0 && sum.Processed%r.Progress == 0 {
		r.logger().Printf("level=info msg=progress job=%s processed=%d failed=%d",
			r.Job, sum.Processed, sum.Failed)
	}
}

// docIdentity labels a document for failure reports: the text at the doc-id
// path when it resolves, otherwise a positional placeholder.
func (r *Runner) docIdentity(root *xmldoc.Element, index int) string {
	path := r.DocIDPath
	if path == "" {
		path = DefaultDocIDPath
	}
	if root != nil {
		if m := root.FindAll(path); len(m) > 0 {
			if id := m[0].Text(); id != "" {
				return id
			}
		}
	}
	return "doc-" + strconv.Itoa(index)
}

func (r *Runner) recordRows() {
	for _, name := range r.Store.Tables() {
		metrics.RecordRows(r.Job, name, "extracted", int64(r.Store.RowCount(name)))
	}
}

func (r *Runner) logger() Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return nopLogger{}
}
