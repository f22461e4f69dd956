package layout

import (
	"github.com/google/uuid"

	"github.com/matzehuels/bentogrid/pkg/grid"
)

// Engine is the boundary to an external packing/drag engine.
type Engine interface {
	// Add registers elements as packable items, in the given order.
	Add(items []*Element) error

	// Remove unregisters elements. It is called before the elements are detached.
	Remove(items []*Element) error

	// RefreshItems re-reads the dimensions of all registered elements.
	RefreshItems() error

	// Layout recomputes the arrangement and writes positions onto the elements.
	Layout() error
}

// Element is the render-tree handle of one tile.
//
// Each rendered element has its own Key. A full resync renders new elements,
// so the engine sees new keys even for tiles it has seen before.
type Element struct {
	Key    uuid.UUID
	TileID int

	// Width and Height are the derived pixel size.
	Width  int
	Height int

	// X and Y are the pixel position assigned by the engine's last layout.
	X int
	Y int

	// Tile is the tile as of the last render commit, for drawing.
	Tile grid.Tile

	registered bool
}

// Registered reports whether the engine currently holds this element.
func (e *Element) Registered() bool { return e.registered }
