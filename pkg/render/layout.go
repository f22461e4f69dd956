package render

import (
	"encoding/json"

	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/layout"
)

// Layout is the JSON form of a packed grid.
type Layout struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	CellSize int    `json:"cell_size"`
	Margin   int    `json:"margin"`
	Items    []Item `json:"items"`
}

// Item is one positioned tile.
type Item struct {
	ID          int    `json:"id"`
	Key         string `json:"key"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	WidthUnits  int    `json:"width_units"`
	HeightUnits int    `json:"height_units"`
	Link        string `json:"link,omitempty"`
	HasImage    bool   `json:"has_image,omitempty"`
}

// NewLayout describes elements packed into bounds.
func NewLayout(els []*layout.Element, bounds geometry.Size, conv geometry.Converter) Layout {
	l := Layout{
		Width:    bounds.Width,
		Height:   bounds.Height,
		CellSize: conv.CellSize,
		Margin:   conv.Margin,
		Items:    make([]Item, 0, len(els)),
	}
	for _, el := range els {
		l.Items = append(l.Items, Item{
			ID:          el.TileID,
			Key:         el.Key.String(),
			X:           el.X,
			Y:           el.Y,
			Width:       el.Width,
			Height:      el.Height,
			WidthUnits:  el.Tile.WidthUnits,
			HeightUnits: el.Tile.HeightUnits,
			Link:        el.Tile.LinkURL(),
			HasImage:    el.Tile.HasImage(),
		})
	}
	return l
}

// RenderJSON encodes the layout with two-space indentation.
func RenderJSON(els []*layout.Element, bounds geometry.Size, conv geometry.Converter) ([]byte, error) {
	return json.MarshalIndent(NewLayout(els, bounds, conv), "", "  ")
}

// Extent returns the smallest size that contains every element.
// It is used when the engine does not report its own bounds.
func Extent(els []*layout.Element) geometry.Size {
	var s geometry.Size
	for _, el := range els {
		s.Width = max(s.Width, el.X+el.Width)
		s.Height = max(s.Height, el.Y+el.Height)
	}
	return s
}
