package hierarchy

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateRecord is returned when a record id is added twice.
	ErrDuplicateRecord = errors.New("hierarchy: duplicate record id")

	// ErrFrozen is returned when a record is added after Build.
	ErrFrozen = errors.New("hierarchy: store is frozen")
)

// Builder collects records in input order. Call Build once ingestion is
// complete to obtain the immutable Store. A Builder is not safe for
// concurrent use.
type Builder struct {
	store  *Store
	frozen bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{store: newStore()}
}

// AddResult describes how a record was placed in the hierarchy.
type AddResult struct {
	// Root is true if the record has no superior.
	Root bool

	// AdditionalRoot is true if the record is rootless but a designated
	// root already exists. The record is kept as another root of the forest.
	AdditionalRoot bool
}

// Add inserts a record. The first rootless record becomes the designated
// root; later rootless records are kept as additional forest roots.
func (b *Builder) Add(rec Record) (AddResult, error) {
	if b.frozen {
		return AddResult{}, ErrFrozen
	}
	if err := rec.Validate(); err != nil {
		return AddResult{}, err
	}
	s := b.store
	if _, exists := s.byID[rec.ID]; exists {
		return AddResult{}, fmt.Errorf("%w: %d", ErrDuplicateRecord, rec.ID)
	}

	s.byID[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	superiorID, ok := rec.Superior.Get()
	if ok {
		if _, seen := s.subordinates[superiorID]; !seen {
			s.superiors = append(s.superiors, superiorID)
		}
		s.subordinates[superiorID] = append(s.subordinates[superiorID], rec.ID)
		return AddResult{}, nil
	}

	s.roots = append(s.roots, rec.ID)
	return AddResult{Root: true, AdditionalRoot: len(s.roots) > 1}, nil
}

// Len returns the number of records added so far.
func (b *Builder) Len() int {
	return len(b.store.order)
}

// Build freezes the builder and returns the Store. Subsequent calls
// return the same Store.
func (b *Builder) Build() *Store {
	b.frozen = true
	return b.store
}

// Store is an immutable, indexed view of a workforce hierarchy. It is safe
// for concurrent readers.
type Store struct {
	byID         map[int]Record
	order        []int
	subordinates map[int][]int
	superiors    []int
	roots        []int
}

func newStore() *Store {
	return &Store{
		byID:         make(map[int]Record),
		subordinates: make(map[int][]int),
	}
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (Record, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// SubordinatesOf returns the direct reports of id in insertion order.
// The returned slice is a copy and may be empty.
func (s *Store) SubordinatesOf(id int) []Record {
	ids := s.subordinates[id]
	out := make([]Record, 0, len(ids))
	for _, sub := range ids {
		out = append(out, s.byID[sub])
	}
	return out
}

// Root returns the designated root: the first rootless record in input order.
func (s *Store) Root() (Record, bool) {
	if len(s.roots) == 0 {
		return Record{}, false
	}
	return s.byID[s.roots[0]], true
}

// Roots returns every rootless record in input order.
func (s *Store) Roots() []Record {
	out := make([]Record, 0, len(s.roots))
	for _, id := range s.roots {
		out = append(out, s.byID[id])
	}
	return out
}

// IsRoot returns true if id is a known record with no superior.
func (s *Store) IsRoot(id int) bool {
	rec, ok := s.byID[id]
	return ok && rec.IsRoot()
}

// All returns every record in input order.
func (s *Store) All() []Record {
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Superiors returns the ids referenced as a superior by at least one
// record, in the order they were first referenced. Ids that do not resolve
// to a record are included.
func (s *Store) Superiors() []int {
	out := make([]int, len(s.superiors))
	copy(out, s.superiors)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.order)
}
