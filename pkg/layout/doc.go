// Package layout bridges the tile model to a packing/drag layout engine.
//
// The engine is a black box reached through the four capabilities of
// [Engine]: Add, Remove, RefreshItems and Layout. It arranges [Element]
// handles, the render-tree nodes that stand for tiles, and writes their pixel
// positions back onto them.
//
// # Synchronization Rules
//
// [Adapter] keeps the engine's item set in step with the tile collection:
//
//   - A tile added to the collection is registered with Engine.Add once its
//     element exists (after [Adapter.Commit]).
//   - A removed tile is unregistered with Engine.Remove before its element
//     is detached, so the engine never holds a dangling element.
//   - A resize is followed by RefreshItems and then Layout.
//   - A reorder or a bulk load is a full resync: remove every registered
//     element, add all elements in collection order, then one Layout.
//
// Registration order always equals collection order, because engines use it
// as the seed of their default arrangement.
//
// # Deferred Sync
//
// Engine calls must run after the render commit that creates the elements
// they refer to. [Queue] is the explicit single-threaded deferred-call queue
// used for that: the controller mutates the store, defers the sync, commits
// the render and then flushes the queue before accepting the next intent.
//
// # Failures
//
// Engine failures are LAYOUT_SYNC errors and are never fatal. The adapter
// marks itself stale and the next sync performs a full resync instead of the
// incremental call.
//
// [Packer] is an in-process engine that packs elements first-fit on a column
// grid. The TUI, the renderers and the HTTP server use it.
package layout
