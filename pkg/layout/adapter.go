package layout

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/observability"
)

// Adapter keeps a layout engine's item set synchronized with a tile collection.
//
// The adapter mirrors the collection as an ordered list of elements. Sizes are
// always derived from tile units through the converter; element pixel sizes
// are never read back into the model.
//
// Adapter is not safe for concurrent use.
type Adapter struct {
	engine Engine
	conv   geometry.Converter
	logger *log.Logger

	elements []*Element

	// orphans were detached from the collection while the engine still held
	// them. The next resync unregisters them.
	orphans []*Element

	stale bool
}

// NewAdapter creates an adapter around an injected engine handle.
// A nil logger uses log.Default().
func NewAdapter(engine Engine, conv geometry.Converter, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{engine: engine, conv: conv, logger: logger}
}

// Converter returns the unit to pixel converter used for element sizes.
func (a *Adapter) Converter() geometry.Converter { return a.conv }

// Stale reports whether an earlier engine call failed. A stale adapter
// performs a full resync on its next sync call.
func (a *Adapter) Stale() bool { return a.stale }

// Elements returns the elements in collection order.
// The returned slice is a copy; the elements are shared.
func (a *Adapter) Elements() []*Element {
	return slices.Clone(a.elements)
}

// Element returns the element rendered for a tile id.
func (a *Adapter) Element(id int) (*Element, bool) {
	i := a.index(id)
	if i < 0 {
		return nil, false
	}
	return a.elements[i], true
}

// Added renders an element for a new tile and registers it with the engine.
func (a *Adapter) Added(t grid.Tile) error {
	el := a.render(t)
	a.elements = append(a.elements, el)
	if a.stale {
		return a.resync()
	}

	if err := a.call("add", 1, func() error { return a.engine.Add([]*Element{el}) }); err != nil {
		return err
	}
	el.registered = true
	return a.call("layout", len(a.elements), a.engine.Layout)
}

// Removed unregisters the element of a removed tile and then detaches it.
func (a *Adapter) Removed(id int) error {
	i := a.index(id)
	if i < 0 {
		return errors.NotFound(id)
	}
	el := a.elements[i]
	if a.stale {
		a.elements = slices.Delete(a.elements, i, i+1)
		a.orphans = append(a.orphans, el)
		return a.resync()
	}

	if el.registered {
		if err := a.call("remove", 1, func() error { return a.engine.Remove([]*Element{el}) }); err != nil {
			a.elements = slices.Delete(a.elements, i, i+1)
			a.orphans = append(a.orphans, el)
			return err
		}
		el.registered = false
	}
	a.elements = slices.Delete(a.elements, i, i+1)
	return a.call("layout", len(a.elements), a.engine.Layout)
}

// Resized updates a tile's element size, refreshes the engine's cached
// dimensions and re-runs the layout.
func (a *Adapter) Resized(t grid.Tile) error {
	i := a.index(t.ID)
	if i < 0 {
		return errors.NotFound(t.ID)
	}
	el := a.elements[i]
	size := a.conv.Size(t.WidthUnits, t.HeightUnits)
	el.Width, el.Height = size.Width, size.Height
	el.Tile = t.Clone()
	if a.stale {
		return a.resync()
	}

	if err := a.call("refresh", len(a.elements), a.engine.RefreshItems); err != nil {
		return err
	}
	return a.call("layout", len(a.elements), a.engine.Layout)
}

// Updated refreshes the drawn content of a tile's element. Image and link
// changes do not affect geometry, so the engine is not involved unless the
// adapter is stale.
func (a *Adapter) Updated(t grid.Tile) error {
	i := a.index(t.ID)
	if i < 0 {
		return errors.NotFound(t.ID)
	}
	a.elements[i].Tile = t.Clone()
	if a.stale {
		return a.resync()
	}
	return nil
}

// Resync replaces the whole item set: every registered element is removed,
// fresh elements are rendered and added in collection order, and the engine
// lays them out once.
func (a *Adapter) Resync(tiles []grid.Tile) error {
	old := slices.Concat(a.orphans, a.elements)
	a.orphans = nil
	a.elements = make([]*Element, 0, len(tiles))
	for _, t := range tiles {
		a.elements = append(a.elements, a.render(t))
	}
	return a.replace(old)
}

// resync re-renders the mirrored collection.
func (a *Adapter) resync() error {
	tiles := make([]grid.Tile, len(a.elements))
	for i, el := range a.elements {
		tiles[i] = el.Tile
	}
	return a.Resync(tiles)
}

func (a *Adapter) replace(old []*Element) error {
	var registered []*Element
	for _, el := range old {
		if el.registered {
			registered = append(registered, el)
		}
	}
	a.logger.Debug("layout resync", "remove", len(registered), "add", len(a.elements))

	if len(registered) > 0 {
		if err := a.call("remove", len(registered), func() error { return a.engine.Remove(registered) }); err != nil {
			// Keep the old elements around so the next resync retries them.
			a.orphans = append(a.orphans, registered...)
			return err
		}
		for _, el := range registered {
			el.registered = false
		}
	}

	if len(a.elements) > 0 {
		if err := a.call("add", len(a.elements), func() error { return a.engine.Add(a.elements) }); err != nil {
			return err
		}
		for _, el := range a.elements {
			el.registered = true
		}
	}

	if err := a.call("layout", len(a.elements), a.engine.Layout); err != nil {
		return err
	}
	a.stale = false
	return nil
}

// call runs one engine call, reports it and converts a failure into a
// LAYOUT_SYNC error that marks the adapter stale.
func (a *Adapter) call(op string, items int, fn func() error) error {
	err := fn()
	observability.Grid().OnSync(context.Background(), op, items, err)
	if err == nil {
		return nil
	}
	a.stale = true
	a.logger.Warn("layout engine call failed", "op", op, "items", items, "err", err)
	return errors.Wrap(errors.ErrCodeLayoutSync, err, "engine %s", op)
}

func (a *Adapter) render(t grid.Tile) *Element {
	size := a.conv.Size(t.WidthUnits, t.HeightUnits)
	return &Element{
		Key:    uuid.New(),
		TileID: t.ID,
		Width:  size.Width,
		Height: size.Height,
		Tile:   t.Clone(),
	}
}

func (a *Adapter) index(id int) int {
	return slices.IndexFunc(a.elements, func(el *Element) bool { return el.TileID == id })
}
