package schema

// Fieldnames derives, per entity, the canonical ordered and duplicate-free
// column list any record for that entity may carry. It must run before
// serialization so column order is fixed regardless of which rows happened to
// populate which optional columns.
//
// Ordering per entity: "id" when the entity declares a primary key or is
// nested under a parent, then "<parent>_id" when nested, then the scalar
// columns in declaration order. Nested entity rules contribute to their own
// entity's list, not the parent's.
//
// Distinct top-level entries may target the same entity name (alias paths
// mapping to one logical table); their column lists are merged preserving
// first-seen order.
func (c *Config) Fieldnames() map[string][]string {
	out := map[string][]string{}

	var walk func(er *EntityRule, parent string)
	walk = func(er *EntityRule, parent string) {
		cols := make([]string, 0, len(er.Fields)+2)
		if er.PK != "" || parent != "" {
			cols = append(cols, "id")
		}
		if parent != "" {
			cols = append(cols, parent+"_id")
		}
		for _, f := range er.Fields {
			switch r := f.Rule.(type) {
			case ScalarRule:
				cols = append(cols, r.Column)
			case *EntityRule:
				walk(r, er.Entity)
			}
		}
		out[er.Entity] = mergeColumns(out[er.Entity], cols)
	}

	for _, e := range c.Entries {
		if er, ok := e.Rule.(*EntityRule); ok {
			walk(er, "")
		}
		// Top-level scalar rules have no table to land in; they are legal
		// but contribute no columns.
	}
	return out
}

// mergeColumns appends the names of add not already present, keeping
// first-seen order.
func mergeColumns(have, add []string) []string {
	seen := make(map[string]struct{}, len(have)+len(add))
	out := make([]string, 0, len(have)+len(add))
	for _, lists := range [2][]string{have, add} {
		for _, c := range lists {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
