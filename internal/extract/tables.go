package extract

// Record is one extracted row: column name to string value. Absent columns
// are missing keys, not empty entries. A record is fully populated during
// one recursive pass and never mutated after it is appended.
type Record map[string]string

// TableStore accumulates extracted rows per entity name, preserving both
// table-creation order and row-insertion order. Insertion order matters: it
// drives synthetic key assignment and the output row order.
//
// A store is owned by exactly one conversion run: write-only during
// extraction, read-only during write-out. There are no concurrent writers.
type TableStore struct {
	names []string
	rows  map[string][]Record

	// base, when set, makes this store a document-local scratch whose
	// counters continue from the committed store's counts.
	base *TableStore
}

// NewTableStore returns an empty store.
func NewTableStore() *TableStore {
	return &TableStore{rows: map[string][]Record{}}
}

// Scratch returns a document-local store layered over s. Rows appended to
// the scratch are invisible to s until Merge; RowCount on the scratch
// includes s's committed rows so synthetic keys stay monotonic across
// documents.
func (s *TableStore) Scratch() *TableStore {
	return &TableStore{rows: map[string][]Record{}, base: s}
}

// Append adds rec to the entity's row sequence.
func (s *TableStore) Append(entity string, rec Record) {
	if _, ok := s.rows[entity]; !ok {
		s.names = append(s.names, entity)
	}
	s.rows[entity] = append(s.rows[entity], rec)
}

// RowCount reports the number of rows accumulated for entity, including the
// base store's rows when s is a scratch.
func (s *TableStore) RowCount(entity string) int {
	n := len(s.rows[entity])
	if s.base != nil {
		n += s.base.RowCount(entity)
	}
	return n
}

// Tables lists entity names in first-append order.
func (s *TableStore) Tables() []string {
	return s.names
}

// Rows returns the accumulated rows for entity in insertion order.
func (s *TableStore) Rows(entity string) []Record {
	return s.rows[entity]
}

// Merge appends every row of the scratch store sc into s, preserving sc's
// insertion order. Called once per successfully extracted document.
func (s *TableStore) Merge(sc *TableStore) {
	for _, name := range sc.names {
		for _, rec := range sc.rows[name] {
			s.Append(name, rec)
		}
	}
}
