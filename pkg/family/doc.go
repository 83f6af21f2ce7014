// Package family provides the genealogical graph store: people linked by
// parent/child relationships that are always kept bidirectionally consistent.
//
// # Overview
//
// A [Store] owns the authoritative collection of [Person] records. Every
// mutation goes through it, so the two graph invariants never lapse:
//
//   - Reciprocity: b is in a.Children exactly when a is in b.Parents.
//   - No dangling references: every id in a Parents or Children set names a
//     person currently in the store.
//
// # Basic Usage
//
//	s := family.NewStore(backend.NewFileBackend("data.json"))
//	if err := s.Load(ctx); err != nil {
//	    return err
//	}
//	ana, _ := s.Add(ctx, family.NewPerson{Name: "Ana"})
//	bea, _ := s.Add(ctx, family.NewPerson{Name: "Bea", Parents: []int{ana}})
//	p, _ := s.Get(ana) // p.Children == []int{bea}
//
// # Persistence
//
// The store persists through a [Backend] after every mutation. A mutation is
// applied to a working copy of the graph, the copy is saved, and only then
// does it replace the in-memory graph. A failed save therefore leaves memory
// exactly as it was before the call and returns a STORAGE_WRITE error.
//
// # Identifiers
//
// Ids are positive integers allocated as one more than the highest id the
// store has seen since the last [Store.Load]. Deleting the highest id does
// not make it available again within the same session.
//
// # Concurrency
//
// Store instances are not safe for concurrent use. Callers that share a store
// between goroutines (the HTTP API does) must serialize access themselves.
package family
