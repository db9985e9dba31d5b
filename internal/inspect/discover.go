// Package inspect inventories the tag paths found in a batch of grant
// documents. Writing a mapping config by hand means knowing which paths
// exist, how often they repeat per document, and what their text looks
// like; Discover reports exactly that, and StarterConfig turns the report
// into a first-draft mapping config to edit down.
package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/simonwiles/patent-conversion/internal/xmldoc"
)

// PathStats aggregates one tag path across all parseable documents.
type PathStats struct {
	// Count is the total number of occurrences.
	Count int `json:"count"`
	// DocsWith is the number of documents containing the path at least once.
	DocsWith int `json:"docs_with"`
	// MaxPerDoc is the highest occurrence count in any single document.
	MaxPerDoc int `json:"max_per_doc"`
	// Examples holds up to three distinct text values from leaf elements.
	Examples []string `json:"examples,omitempty"`
}

// Report is the inventory of one batch scan.
type Report struct {
	RootTag    string               `json:"root_tag"`
	Docs       int                  `json:"docs"`
	FailedDocs int                  `json:"failed_docs"`
	Paths      map[string]PathStats `json:"paths"`
}

// Discover splits src into documents and inventories every element path
// relative to the document root. Unparseable documents are counted and
// skipped, matching the conversion's own failure isolation. A limit > 0
// stops after that many documents, which is enough for a representative
// sample of a multi-gigabyte batch.
func Discover(src io.Reader, limit int) (Report, error) {
	rep := Report{Paths: map[string]PathStats{}}
	sp := xmldoc.NewSplitter(src)
	for {
		if limit > 0 && rep.Docs+rep.FailedDocs >= limit {
			return rep, nil
		}
		raw, err := sp.Next()
		if err == io.EOF {
			return rep, nil
		}
		if err != nil {
			return rep, fmt.Errorf("inspect: read batch: %w", err)
		}
		root, err := xmldoc.Parse(raw)
		if err != nil {
			rep.FailedDocs++
			continue
		}
		rep.Docs++
		if rep.RootTag == "" {
			rep.RootTag = root.Name
		}
		merge(rep.Paths, collect(root))
	}
}

// collect walks one document and counts every path below the root.
func collect(root *xmldoc.Element) map[string]*pathAgg {
	per := map[string]*pathAgg{}
	var walk func(el *xmldoc.Element, prefix string)
	walk = func(el *xmldoc.Element, prefix string) {
		for _, c := range el.Children {
			path := c.Name
			if prefix != "" {
				path = prefix + "/" + c.Name
			}
			a := per[path]
			if a == nil {
				a = &pathAgg{}
				per[path] = a
			}
			a.count++
			if len(c.Children) == 0 {
				a.addExample(c.Text())
			}
			walk(c, path)
		}
	}
	walk(root, "")
	return per
}

type pathAgg struct {
	count    int
	examples []string
}

func (a *pathAgg) addExample(text string) {
	if text == "" || len(a.examples) >= 3 {
		return
	}
	for _, have := range a.examples {
		if have == text {
			return
		}
	}
	a.examples = append(a.examples, text)
}

func merge(global map[string]PathStats, per map[string]*pathAgg) {
	for path, a := range per {
		g := global[path]
		g.Count += a.count
		g.DocsWith++
		if a.count > g.MaxPerDoc {
			g.MaxPerDoc = a.count
		}
		for _, ex := range a.examples {
			dup := false
			for _, have := range g.Examples {
				if have == ex {
					dup = true
					break
				}
			}
			if !dup && len(g.Examples) < 3 {
				g.Examples = append(g.Examples, ex)
			}
		}
		global[path] = g
	}
}

// SortedPaths returns the report's paths in deterministic order.
func SortedPaths(rep Report) []string {
	paths := make([]string, 0, len(rep.Paths))
	for p := range rep.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// StarterConfig renders a first-draft mapping config from a report: one
// root entity whose fields cover every leaf path that carried text.
// Paths that repeat within a document become join rules. The output is a
// starting point for hand editing, not a finished config; repeated
// interior paths that deserve their own entity tables still have to be
// restructured manually.
func StarterConfig(rep Report, entity string) ([]byte, error) {
	if rep.RootTag == "" {
		return nil, fmt.Errorf("inspect: no parseable documents in sample")
	}
	if entity == "" {
		entity = strings.ToLower(rep.RootTag)
	}

	var fields bytes.Buffer
	first := true
	for _, path := range SortedPaths(rep) {
		st := rep.Paths[path]
		if len(st.Examples) == 0 {
			continue
		}
		col := columnName(path)
		if st.MaxPerDoc > 1 {
			col = "|" + col
		}
		if !first {
			fields.WriteString(",\n")
		}
		first = false
		fmt.Fprintf(&fields, "      %s: %s", mustJSON(path), mustJSON(col))
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "{\n  %s: {\n    \"entity\": %s,\n    \"fields\": {\n", mustJSON(rep.RootTag), mustJSON(entity))
	out.Write(fields.Bytes())
	out.WriteString("\n    }\n  }\n}\n")
	return out.Bytes(), nil
}

// columnName derives a readable column from a path, skipping the PDAT and
// STEXT wrappers the red-book DTD puts around nearly every value.
func columnName(path string) string {
	segs := strings.Split(path, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		switch segs[i] {
		case "PDAT", "STEXT", "BTEXT":
			continue
		default:
			return segs[i]
		}
	}
	return segs[len(segs)-1]
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
