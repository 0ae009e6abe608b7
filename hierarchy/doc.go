// Package hierarchy holds a workforce hierarchy built from flat
// parent-pointer records.
//
// Records are added to a Builder in input order. Build freezes the builder
// and returns a Store, which indexes records by id, keeps each superior's
// direct reports in insertion order and tracks the roots of the forest.
//
//	b := hierarchy.NewBuilder()
//	b.Add(hierarchy.NewRecord(1, "John Doe", 60000, hierarchy.NoSuperior()))
//	b.Add(hierarchy.NewRecord(2, "Jane Smith", 55000, hierarchy.ReportsTo(1)))
//	store := b.Build()
//
// # Roots
//
// The first rootless record in input order is the designated root returned
// by Store.Root. Any later rootless record is kept as an additional root of
// the forest and reported through AddResult.AdditionalRoot.
//
// The Store does not check that superior references resolve or that they
// are acyclic. Consumers walking the hierarchy must tolerate both.
package hierarchy
