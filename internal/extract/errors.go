package extract

import "fmt"

// SchemaViolationError reports a cardinality mismatch during extraction: a
// rule that requires exactly one element found a different number of matches
// at its path. It aborts the current document, never the batch.
type SchemaViolationError struct {
	Path  string // path relative to the context node
	Found int
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation at %q: want exactly one element, found %d", e.Path, e.Found)
}
