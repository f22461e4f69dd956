// Package controller orchestrates a bento grid in response to user intents.
//
// A [Controller] owns the live tile collection ([grid.Store]), the layout
// adapter and the deferred sync queue for one grid. Every intent is one store
// operation followed by the matching layout sync:
//
//	AddTile      Store.Add        → Adapter.Added
//	ResizeTile   Store.Resize     → Adapter.Resized
//	SetImage     Store.UpdateImage → Adapter.Updated
//	SetLink      Store.UpdateLink → Adapter.Updated
//	RemoveTile   Store.Remove     → Adapter.Removed
//	MoveTile     Store.Move       → Adapter.Resync
//	Save         codec + kv.Store (no sync)
//	Load         kv.Store + codec → Store.Replace → Adapter.Resync
//
// The sync is deferred until after the render commit ([Renderer]) and the
// queue is flushed before the next intent is processed, so no intent ever
// observes stale engine membership.
//
// Geometry is only ever read from the store. Rendered pixel sizes are derived
// output and are never written back.
//
// # Errors
//
// Store errors (NOT_FOUND, INVALID_INPUT), document errors
// (MALFORMED_DOCUMENT) and upload errors (IMAGE_DECODE) fail the intent and
// leave the collection untouched. Layout engine failures (LAYOUT_SYNC) never
// fail the intent; they are logged and reported in [Result.SyncErr].
//
// # Concurrency
//
// Controller is single-threaded. [Loop] serializes intents from many
// goroutines onto one goroutine for servers.
package controller
