package layout

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/bentogrid/pkg/geometry"
)

// DefaultColumns is the container width, in cells, used when none is configured.
const DefaultColumns = 4

// Packer is an in-process layout engine.
//
// It places items in registration order at the top-most, then left-most free
// slot of a grid that is Columns cells wide, which is the default behaviour
// of browser drag-and-pack engines. Item dimensions are cached when items are
// added and on RefreshItems, so a resize that is not followed by RefreshItems
// is not seen by Layout.
type Packer struct {
	conv    geometry.Converter
	columns int

	items []*Element
	spans map[uuid.UUID]span
	rows  int
}

type span struct{ w, h int }

var _ Engine = (*Packer)(nil)

// NewPacker creates a packer for a container columns cells wide.
// Columns below 1 fall back to [DefaultColumns].
func NewPacker(conv geometry.Converter, columns int) *Packer {
	if columns < 1 {
		columns = DefaultColumns
	}
	return &Packer{conv: conv, columns: columns, spans: make(map[uuid.UUID]span)}
}

// Columns returns the container width in cells.
func (p *Packer) Columns() int { return p.columns }

// Items returns the registered elements in registration order.
func (p *Packer) Items() []*Element { return slices.Clone(p.items) }

// Bounds returns the pixel size of the area covered by the last layout.
func (p *Packer) Bounds() geometry.Size {
	if len(p.items) == 0 {
		return geometry.Size{}
	}
	return p.conv.Size(p.columns, p.rows)
}

// Add implements [Engine].
func (p *Packer) Add(items []*Element) error {
	seen := make(map[uuid.UUID]bool, len(items))
	for _, el := range items {
		if _, ok := p.spans[el.Key]; ok || seen[el.Key] {
			return fmt.Errorf("element %s already registered", el.Key)
		}
		seen[el.Key] = true
	}
	for _, el := range items {
		p.items = append(p.items, el)
		p.spans[el.Key] = p.measure(el)
	}
	return nil
}

// Remove implements [Engine].
func (p *Packer) Remove(items []*Element) error {
	for _, el := range items {
		if _, ok := p.spans[el.Key]; !ok {
			return fmt.Errorf("element %s not registered", el.Key)
		}
	}
	for _, el := range items {
		delete(p.spans, el.Key)
		p.items = slices.DeleteFunc(p.items, func(x *Element) bool { return x.Key == el.Key })
	}
	return nil
}

// RefreshItems implements [Engine].
func (p *Packer) RefreshItems() error {
	for _, el := range p.items {
		p.spans[el.Key] = p.measure(el)
	}
	return nil
}

// Layout implements [Engine].
func (p *Packer) Layout() error {
	var occupied [][]bool
	p.rows = 0

	for _, el := range p.items {
		s := p.spans[el.Key]
		w := min(s.w, p.columns)
		col, row := p.firstFit(&occupied, w, s.h)
		for r := row; r < row+s.h; r++ {
			for c := col; c < col+w; c++ {
				occupied[r][c] = true
			}
		}
		el.X = p.conv.Offset(col)
		el.Y = p.conv.Offset(row)
		p.rows = max(p.rows, row+s.h)
	}
	return nil
}

// firstFit finds the top-most, then left-most slot of w x h free cells,
// growing the occupancy grid as needed.
func (p *Packer) firstFit(occupied *[][]bool, w, h int) (col, row int) {
	for row = 0; ; row++ {
		for len(*occupied) < row+h {
			*occupied = append(*occupied, make([]bool, p.columns))
		}
		for col = 0; col+w <= p.columns; col++ {
			if fits(*occupied, col, row, w, h) {
				return col, row
			}
		}
	}
}

func fits(occupied [][]bool, col, row, w, h int) bool {
	for r := row; r < row+h; r++ {
		for c := col; c < col+w; c++ {
			if occupied[r][c] {
				return false
			}
		}
	}
	return true
}

// measure converts an element's pixel size back into whole cells.
func (p *Packer) measure(el *Element) span {
	pitch := p.conv.Pitch()
	cells := func(px int) int {
		return max(1, (px+p.conv.Margin+pitch-1)/pitch)
	}
	return span{w: cells(el.Width), h: cells(el.Height)}
}
