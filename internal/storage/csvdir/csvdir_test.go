package csvdir

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/simonwiles/patent-conversion/internal/extract"
	"github.com/simonwiles/patent-conversion/internal/storage"
)

func TestWriteTable(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	table := storage.Table{
		Name:    "patents",
		Columns: []string{"id", "title", "classes"},
		Rows: []extract.Record{
			{"id": "1001", "title": "Widget press", "classes": "29/33|72/101"},
			{"id": "1002", "title": "Sprocket"},
		},
	}
	if err := s.WriteTable(context.Background(), table); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out", "patents.csv"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want := [][]string{
		{"id", "title", "classes"},
		{"1001", "Widget press", "29/33|72/101"},
		{"1002", "Sprocket", ""},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Fatalf("csv = %v, want %v", recs, want)
	}
}

func TestNewRejectsUnwritableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o500); err != nil {
		t.Fatal(err)
	}
	if _, err := New(locked); err == nil {
		t.Fatal("New must reject an unwritable directory")
	}
}
