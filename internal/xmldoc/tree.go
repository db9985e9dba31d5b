// Package xmldoc turns a single patent-grant XML document into a navigable
// element tree and splits batch files into per-document chunks.
//
// The tree deliberately exposes only what the schema-mapping engine needs:
//
//   - FindAll: relative tag-path lookup from any node (each segment matches
//     immediate children, like etree's "./A/B").
//   - Text: flattened "visible text" of a node and its descendants, with
//     whitespace runs collapsed and Unicode normalized to NFC.
//
// Grant red-book files reference DTD entities that encoding/xml cannot
// resolve on its own; Parse rewrites the known USPTO alias entities and
// supplies a small named-entity table so documents parse without a DTD.
package xmldoc

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Element is one node of a parsed document. Mixed content (text interleaved
// with child elements) is kept in document order so Text reads naturally.
type Element struct {
	Name     string
	Attr     []xml.Attr
	Children []*Element

	nodes []content
}

// content is either a child element or a run of character data.
type content struct {
	el   *Element
	text string
}

// dtdAliases maps the nonstandard entity names found in grant red-book files
// (e.g. 06566367.xml uses &mgr; where &mu; is meant) onto their ISO names.
var dtdAliases = strings.NewReplacer(
	"&mgr;", "&mu;",
	"&thgr;", "&theta;",
	"&Dgr;", "&Delta;",
	"&agr;", "&alpha;",
	"&bgr;", "&beta;",
)

// entityTable resolves the named entities the grant DTDs would otherwise
// supply. Only the names observed in sample batches are listed; unknown
// entities remain a parse error, which the batch runner treats as a
// per-document failure.
var entityTable = map[string]string{
	"alpha":  "α",
	"beta":   "β",
	"theta":  "θ",
	"mu":     "μ",
	"Delta":  "Δ",
	"deg":    "°",
	"plusmn": "±",
	"times":  "×",
	"middot": "·",
	"prime":  "′",
	"nbsp":   " ",
	"mdash":  "—",
	"ndash":  "–",
}

// Parse builds an element tree for one document. Malformed markup is
// reported as an error; callers recover at document granularity.
func Parse(doc []byte) (*Element, error) {
	dec := xml.NewDecoder(strings.NewReader(dtdAliases.Replace(string(doc))))
	dec.Entity = entityTable

	var (
		root  *Element
		stack []*Element
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmldoc: parse: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				el.Attr = append([]xml.Attr(nil), t.Attr...)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("xmldoc: parse: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
				parent.nodes = append(parent.nodes, content{el: el})
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.nodes = append(cur.nodes, content{text: string(t)})
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("xmldoc: parse: no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("xmldoc: parse: unclosed element <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

// FindAll returns every element reachable from e by the relative tag path,
// e.g. "SDOBI/B100/B110". Each segment matches immediate children only.
// An empty path yields no matches.
func (e *Element) FindAll(path string) []*Element {
	if path == "" {
		return nil
	}
	cur := []*Element{e}
	for _, seg := range strings.Split(path, "/") {
		var next []*Element
		for _, el := range cur {
			for _, c := range el.Children {
				if c.Name == seg {
					next = append(next, c)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		cur = next
	}
	return cur
}

// Text returns the flattened text content of e and all its descendants,
// normalized: whitespace runs collapse to a single space, edges are trimmed,
// control runes are dropped, and the result is in NFC form.
func (e *Element) Text() string {
	var b strings.Builder
	e.flatten(&b)
	return normalizeText(b.String())
}

func (e *Element) flatten(b *strings.Builder) {
	for _, n := range e.nodes {
		if n.el != nil {
			n.el.flatten(b)
		} else {
			b.WriteString(n.text)
		}
	}
}

// textCleaner strips control runes left over after whitespace collapsing and
// composes combining sequences (NFC), so values compare and load predictably.
var textCleaner = transform.Chain(runes.Remove(runes.In(unicode.Cc)), norm.NFC)

func normalizeText(s string) string {
	s = collapseWhitespace(s)
	if out, _, err := transform.String(textCleaner, s); err == nil {
		return out
	}
	return s
}

// collapseWhitespace replaces consecutive whitespace with a single ASCII
// space and trims leading and trailing whitespace.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	seenSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !seenSpace {
				b.WriteByte(' ')
				seenSpace = true
			}
			continue
		}
		b.WriteRune(r)
		seenSpace = false
	}
	return strings.TrimSpace(b.String())
}
