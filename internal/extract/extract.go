// Package extract applies a schema.Config to parsed documents and
// accumulates the resulting relational rows in a TableStore.
//
// Extraction is recursive: an entity rule selects a set of elements, each
// match becomes one row, and the rule's fields are resolved with the matched
// element as the new context node. Scalar rules fill columns of the
// enclosing row; nested entity rules produce child tables linked back to the
// parent row by a "<parent>_id" column.
//
// A document either contributes all of its rows or none: rows are collected
// in a scratch store and merged only when the whole document extracts
// cleanly.
package extract

import (
	"strconv"
	"strings"

	"github.com/simonwiles/patent-conversion/internal/schema"
	"github.com/simonwiles/patent-conversion/internal/xmldoc"
)

// Extractor converts parsed documents into rows of Store according to
// Config. Not safe for concurrent use.
type Extractor struct {
	Config *schema.Config
	Store  *TableStore
}

// Document extracts every top-level entity rule against the document root
// and commits the rows. On error (a *SchemaViolationError) the store is left
// exactly as it was.
//
// Top-level rules are matched against the root element itself, not resolved
// as a path below it: one batch member is one document, so a top-level
// entity yields at most one row per document. Top-level scalar rules have no
// enclosing row to write into and are skipped.
func (x *Extractor) Document(root *xmldoc.Element) error {
	sc := x.Store.Scratch()
	for _, f := range x.Config.Entries {
		er, ok := f.Rule.(*schema.EntityRule)
		if !ok {
			continue
		}
		if err := x.row(sc, er, root, "", ""); err != nil {
			return err
		}
	}
	x.Store.Merge(sc)
	return nil
}

// entities resolves a nested entity rule: every element matching path below
// ctx becomes one row.
func (x *Extractor) entities(st *TableStore, er *schema.EntityRule, path string, ctx *xmldoc.Element, parentEntity, parentKey string) error {
	for _, el := range ctx.FindAll(path) {
		if err := x.row(st, er, el, parentEntity, parentKey); err != nil {
			return err
		}
	}
	return nil
}

// row materializes one row for er from the matched element el, then recurses
// into nested entity fields. Scalar columns are filled before the row is
// appended; child rows follow their parent in store order.
func (x *Extractor) row(st *TableStore, er *schema.EntityRule, el *xmldoc.Element, parentEntity, parentKey string) error {
	key, err := entityKey(st, er, el)
	if err != nil {
		return err
	}

	rec := Record{}
	if er.PK != "" || parentEntity != "" {
		rec["id"] = key
	}
	if parentEntity != "" {
		rec[parentEntity+"_id"] = parentKey
	}
	for _, f := range er.Fields {
		sr, ok := f.Rule.(schema.ScalarRule)
		if !ok {
			continue
		}
		if err := extractScalar(rec, el, f.Path, sr); err != nil {
			return err
		}
	}
	st.Append(er.Entity, rec)

	for _, f := range er.Fields {
		child, ok := f.Rule.(*schema.EntityRule)
		if !ok {
			continue
		}
		if err := x.entities(st, child, f.Path, el, er.Entity, key); err != nil {
			return err
		}
	}
	return nil
}

// entityKey resolves the row key: the natural key at the PK path when one is
// declared, otherwise the zero-based running row count for the entity. A PK
// path must match exactly one element.
//
// The key is computed even for rows that carry no "id" column, because child
// rows still need it for their parent linkage.
func entityKey(st *TableStore, er *schema.EntityRule, el *xmldoc.Element) (string, error) {
	if er.PK == "" {
		return strconv.Itoa(st.RowCount(er.Entity)), nil
	}
	matches := el.FindAll(er.PK)
	if len(matches) != 1 {
		return "", &SchemaViolationError{Path: er.PK, Found: len(matches)}
	}
	return matches[0].Text(), nil
}

// extractScalar resolves one scalar field against the context node.
//
// Zero matches omit the column in every mode. Text demands exactly one
// match; LiteralAssign only tests presence, so repeated marker elements are
// harmless; JoinMultiple concatenates all matches in document order.
func extractScalar(rec Record, ctx *xmldoc.Element, path string, r schema.ScalarRule) error {
	matches := ctx.FindAll(path)
	switch r.Mode {
	case schema.LiteralAssign:
		if len(matches) > 0 {
			rec[r.Column] = r.Value
		}
	case schema.JoinMultiple:
		if len(matches) == 0 {
			return nil
		}
		parts := make([]string, len(matches))
		for i, m := range matches {
			parts[i] = m.Text()
		}
		rec[r.Column] = strings.Join(parts, r.Sep)
	default:
		switch len(matches) {
		case 0:
		case 1:
			rec[r.Column] = matches[0].Text()
		default:
			return &SchemaViolationError{Path: path, Found: len(matches)}
		}
	}
	return nil
}
