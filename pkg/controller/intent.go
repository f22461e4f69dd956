package controller

import "github.com/matzehuels/bentogrid/pkg/grid"

// Intent is a user action dispatched to a [Controller].
type Intent interface {
	// Name identifies the intent in logs and hooks.
	Name() string
}

// AddTile appends a new 1x1 tile.
type AddTile struct{}

// ResizeTile grows or shrinks a tile by Step units. Step below 1 means 1.
type ResizeTile struct {
	ID        int
	Direction grid.Direction
	Step      int
}

// SetImage replaces a tile's image data. Empty data clears it.
type SetImage struct {
	ID   int
	Data string
}

// SetLink commits link text to a tile. The text is normalized on commit.
type SetLink struct {
	ID   int
	Text string
}

// RemoveTile deletes a tile.
type RemoveTile struct {
	ID int
}

// MoveTile moves a tile to a new position in the display order, as reported
// by a drag in the layout engine.
type MoveTile struct {
	ID    int
	Index int
}

// Save writes the collection to the key-value store.
type Save struct{}

// Load replaces the collection with the document in the key-value store.
type Load struct{}

// LoadDocument replaces the collection with an encoded document supplied by
// the caller, with the same transactional rules as Load.
type LoadDocument struct {
	Data []byte
}

func (AddTile) Name() string      { return "add" }
func (ResizeTile) Name() string   { return "resize" }
func (SetImage) Name() string     { return "image" }
func (SetLink) Name() string      { return "link" }
func (RemoveTile) Name() string   { return "remove" }
func (MoveTile) Name() string     { return "move" }
func (Save) Name() string         { return "save" }
func (Load) Name() string         { return "load" }
func (LoadDocument) Name() string { return "load-document" }
