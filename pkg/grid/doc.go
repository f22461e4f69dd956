// Package grid holds the authoritative in-memory model of a bento grid.
//
// A grid is an ordered collection of [Tile] values. Order is display order:
// it is the order used when registering tiles with the layout engine and the
// order written to persisted documents.
//
// # Invariants
//
//   - Tile ids are unique within a [Store] and are never reused, even after
//     the tile holding them is removed.
//   - WidthUnits and HeightUnits are always at least 1. [Store.Resize] clamps
//     at that floor instead of failing.
//   - Grid units are the only source of truth for size. Pixel sizes are
//     derived by package geometry and never stored here.
//
// # Atomicity
//
// Every [Store] operation validates before it mutates, so a failed call
// leaves the collection exactly as it was. The store is not safe for
// concurrent use; the controller serializes access to it.
//
// # Example
//
//	s := grid.NewStore()
//	t := s.Add()                          // 1x1 tile with id 1
//	t, _ = s.Resize(t.ID, grid.Down, 1)   // now 1x2
//	_, _ = s.UpdateLink(t.ID, "example.com")
//	snap := s.Snapshot()                  // snap[0].Link == "http://example.com"
package grid
