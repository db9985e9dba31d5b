package extract

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type logBuffer struct {
	lines []string
}

func (l *logBuffer) Printf(format string, v ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

const batchConfig = `{
	"PATDOC": {
		"entity": "patents",
		"pk": "SDOBI/B100/B110/DNUM/PDAT",
		"fields": {
			"TITLE": "title"
		}
	}
}`

func batchDoc(num, title string) string {
	return `<?xml version="1.0"?>
<PATDOC>
<SDOBI><B100><B110><DNUM><PDAT>` + num + `</PDAT></DNUM></B110></B100></SDOBI>
<TITLE>` + title + `</TITLE>
</PATDOC>
`
}

func TestRunSkipsMalformedDocument(t *testing.T) {
	batch := batchDoc("1001", "first") +
		"<?xml version=\"1.0\"?>\n<PATDOC><TITLE>broken\n" +
		batchDoc("1003", "third")

	cfg := mustConfig(t, batchConfig)
	st := NewTableStore()
	log := &logBuffer{}
	r := &Runner{Config: cfg, Store: st, Logger: log, Job: "test"}

	sum, err := r.Run(context.Background(), strings.NewReader(batch))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Processed != 3 || sum.Failed != 1 {
		t.Fatalf("summary = %+v, want 3 processed, 1 failed", sum)
	}
	f := sum.Failures[0]
	if f.Index != 1 {
		t.Fatalf("failure index = %d, want 1", f.Index)
	}
	if f.DocID != "doc-1" {
		t.Fatalf("unparseable document must fall back to positional id, got %q", f.DocID)
	}
	if f.Digest == "" {
		t.Fatal("failure digest must be set")
	}

	rows := st.Rows("patents")
	if len(rows) != 2 || rows[0]["id"] != "1001" || rows[1]["id"] != "1003" {
		t.Fatalf("surviving rows = %v", rows)
	}

	found := false
	for _, line := range log.lines {
		if strings.Contains(line, "document skipped") && strings.Contains(line, "doc-1") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no skip line logged: %v", log.lines)
	}
}

func TestSchemaViolationUsesDocumentID(t *testing.T) {
	// The document parses, so the failure is labeled with its grant number.
	batch := batchDoc("1001", "first") +
		strings.Replace(batchDoc("1002", "second"), "</TITLE>", "</TITLE>\n<TITLE>again</TITLE>", 1)

	cfg := mustConfig(t, batchConfig)
	st := NewTableStore()
	r := &Runner{Config: cfg, Store: st, Job: "test"}

	sum, err := r.Run(context.Background(), strings.NewReader(batch))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Failed != 1 {
		t.Fatalf("summary = %+v, want 1 failed", sum)
	}
	if got := sum.Failures[0].DocID; got != "1002" {
		t.Fatalf("failure DocID = %q, want 1002", got)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		if i%7 == 3 {
			b.WriteString("<?xml version=\"1.0\"?>\n<PATDOC><TITLE>broken\n")
			continue
		}
		b.WriteString(batchDoc(fmt.Sprintf("%04d", i), fmt.Sprintf("title %d", i)))
	}
	batch := b.String()
	cfg := mustConfig(t, batchConfig)

	seqStore := NewTableStore()
	seq := &Runner{Config: cfg, Store: seqStore, Job: "seq"}
	seqSum, err := seq.Run(context.Background(), strings.NewReader(batch))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	parStore := NewTableStore()
	par := &Runner{Config: cfg, Store: parStore, Job: "par"}
	parSum, err := par.RunParallel(context.Background(), strings.NewReader(batch), 4)
	if err != nil {
		t.Fatalf("RunParallel: %v", err)
	}

	if seqSum.Processed != parSum.Processed || seqSum.Failed != parSum.Failed {
		t.Fatalf("summaries differ: %+v vs %+v", seqSum, parSum)
	}
	for i := range seqSum.Failures {
		if seqSum.Failures[i].Index != parSum.Failures[i].Index {
			t.Fatalf("failure order differs: %+v vs %+v", seqSum.Failures, parSum.Failures)
		}
	}
	if !reflect.DeepEqual(seqStore.Tables(), parStore.Tables()) {
		t.Fatalf("tables differ: %v vs %v", seqStore.Tables(), parStore.Tables())
	}
	for _, name := range seqStore.Tables() {
		if !reflect.DeepEqual(seqStore.Rows(name), parStore.Rows(name)) {
			t.Fatalf("rows differ for %s", name)
		}
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := mustConfig(t, batchConfig)
	r := &Runner{Config: cfg, Store: NewTableStore(), Job: "test"}
	if _, err := r.Run(ctx, strings.NewReader(batchDoc("1001", "x"))); err == nil {
		t.Fatal("Run must observe cancellation")
	}
}
