// Package schema defines the declarative mapping model that drives the
// conversion: a tree of extraction rules loaded from a JSON config. Each
// config key is a tag path relative to its context node; each value is either
// a scalar rule (one output column) or an entity rule (one output table).
//
// Scalar rule encodings, resolved once at load time:
//
//	"title"            extract text; exactly one element may match
//	"flag:Y"           element presence sets column "flag" to "Y"
//	"|USPCSecondary"   join every match's text with "|"
//
// Key order in the config file is significant: it fixes both extraction
// order and output column order, so the loader preserves it instead of
// decoding into Go maps.
package schema

import "strings"

// ScalarMode selects how a scalar rule produces its value.
type ScalarMode int

const (
	// Text extracts the element's visible text. Exactly one element may
	// match; zero matches omit the column, more than one is a violation.
	Text ScalarMode = iota
	// LiteralAssign writes a fixed value when the element is present,
	// reading no text. Covers self-closing marker elements.
	LiteralAssign
	// JoinMultiple concatenates the text of every match with a separator.
	JoinMultiple
)

// Rule is either a ScalarRule or an *EntityRule.
type Rule interface{ rule() }

// ScalarRule extracts one column of the enclosing entity's record.
type ScalarRule struct {
	Column string
	Mode   ScalarMode
	Value  string // LiteralAssign only
	Sep    string // JoinMultiple only
}

func (ScalarRule) rule() {}

// EntityRule declares a relational table. Every element matching the rule's
// path produces one row; Fields are applied with that element as the new
// context node. PK, when set, is a path to the row's natural key, resolved
// against the matched element.
type EntityRule struct {
	Entity string
	PK     string
	Fields []Field
}

func (*EntityRule) rule() {}

// Field binds a relative path to a rule, in declaration order.
type Field struct {
	Path string
	Rule Rule
}

// Config is the full mapping: ordered top-level entries applied against the
// document root. Immutable once loaded.
type Config struct {
	Entries []Field
}

// parseScalar resolves the string encodings documented on the package.
func parseScalar(s string) (ScalarRule, error) {
	if rest, ok := strings.CutPrefix(s, "|"); ok {
		if rest == "" {
			return ScalarRule{}, errEmptyColumn
		}
		return ScalarRule{Column: rest, Mode: JoinMultiple, Sep: "|"}, nil
	}
	if col, val, ok := strings.Cut(s, ":"); ok {
		if col == "" {
			return ScalarRule{}, errEmptyColumn
		}
		return ScalarRule{Column: col, Mode: LiteralAssign, Value: val}, nil
	}
	if s == "" {
		return ScalarRule{}, errEmptyColumn
	}
	return ScalarRule{Column: s, Mode: Text}, nil
}
