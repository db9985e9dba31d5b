package storage

import (
	"reflect"
	"testing"

	"github.com/simonwiles/patent-conversion/internal/extract"
)

func TestValues(t *testing.T) {
	cols := []string{"id", "title", "notes"}
	rec := extract.Record{"id": "7", "title": "Widget press"}

	got := Values(cols, rec)
	want := []any{"7", "Widget press", nil}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Values = %v, want %v", got, want)
	}
}
