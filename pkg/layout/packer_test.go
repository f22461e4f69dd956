package layout

import (
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/bentogrid/pkg/geometry"
)

type pos struct{ X, Y int }

func element(conv geometry.Converter, id, w, h int) *Element {
	size := conv.Size(w, h)
	return &Element{Key: uuid.New(), TileID: id, Width: size.Width, Height: size.Height}
}

func TestPackerFirstFit(t *testing.T) {
	conv := geometry.Default()

	tests := []struct {
		name    string
		columns int
		sizes   [][2]int
		want    []pos
		bounds  geometry.Size
	}{
		{
			name:    "row fill",
			columns: 3,
			sizes:   [][2]int{{1, 1}, {1, 1}, {1, 1}, {1, 1}},
			want:    []pos{{0, 0}, {110, 0}, {220, 0}, {0, 110}},
			bounds:  geometry.Size{Width: 320, Height: 210},
		},
		{
			name:    "gap filled by later item",
			columns: 3,
			sizes:   [][2]int{{2, 1}, {2, 1}, {1, 1}},
			want:    []pos{{0, 0}, {0, 110}, {220, 0}},
			bounds:  geometry.Size{Width: 320, Height: 210},
		},
		{
			name:    "tall item",
			columns: 2,
			sizes:   [][2]int{{1, 2}, {1, 1}, {1, 1}, {2, 1}},
			want:    []pos{{0, 0}, {110, 0}, {110, 110}, {0, 220}},
			bounds:  geometry.Size{Width: 210, Height: 320},
		},
		{
			name:    "wider than container",
			columns: 2,
			sizes:   [][2]int{{3, 1}, {1, 1}},
			want:    []pos{{0, 0}, {0, 110}},
			bounds:  geometry.Size{Width: 210, Height: 210},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPacker(conv, tt.columns)
			var els []*Element
			for i, s := range tt.sizes {
				els = append(els, element(conv, i+1, s[0], s[1]))
			}
			if err := p.Add(els); err != nil {
				t.Fatal(err)
			}
			if err := p.Layout(); err != nil {
				t.Fatal(err)
			}
			for i, el := range els {
				if got := (pos{el.X, el.Y}); got != tt.want[i] {
					t.Errorf("item %d at %v, want %v", i+1, got, tt.want[i])
				}
			}
			if got := p.Bounds(); got != tt.bounds {
				t.Errorf("Bounds() = %+v, want %+v", got, tt.bounds)
			}
		})
	}
}

func TestPackerNeedsRefresh(t *testing.T) {
	conv := geometry.Default()
	p := NewPacker(conv, 2)
	a, b := element(conv, 1, 1, 1), element(conv, 2, 1, 1)
	if err := p.Add([]*Element{a, b}); err != nil {
		t.Fatal(err)
	}

	// Grow a to full width without refreshing: layout still uses the cached size.
	size := conv.Size(2, 1)
	a.Width, a.Height = size.Width, size.Height
	_ = p.Layout()
	if b.X != 110 || b.Y != 0 {
		t.Errorf("stale layout put b at (%d,%d), want (110,0)", b.X, b.Y)
	}

	_ = p.RefreshItems()
	_ = p.Layout()
	if b.X != 0 || b.Y != 110 {
		t.Errorf("refreshed layout put b at (%d,%d), want (0,110)", b.X, b.Y)
	}
}

func TestPackerRegistration(t *testing.T) {
	conv := geometry.Default()
	p := NewPacker(conv, 0)
	if p.Columns() != DefaultColumns {
		t.Errorf("Columns() = %d, want %d", p.Columns(), DefaultColumns)
	}

	el := element(conv, 1, 1, 1)
	if err := p.Add([]*Element{el}); err != nil {
		t.Fatal(err)
	}
	if err := p.Add([]*Element{el}); err == nil {
		t.Error("duplicate Add succeeded")
	}
	if err := p.Remove([]*Element{el}); err != nil {
		t.Fatal(err)
	}
	if err := p.Remove([]*Element{el}); err == nil {
		t.Error("Remove of unregistered element succeeded")
	}
	if len(p.Items()) != 0 {
		t.Errorf("Items() = %d, want 0", len(p.Items()))
	}
	if got := p.Bounds(); got != (geometry.Size{}) {
		t.Errorf("empty Bounds() = %+v", got)
	}
}

func TestAdapterWithPacker(t *testing.T) {
	conv := geometry.Default()
	p := NewPacker(conv, 3)
	a := NewAdapter(p, conv, quietLogger())

	for id := 1; id <= 3; id++ {
		if err := a.Added(tile(id, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Resized(tile(1, 3, 1)); err != nil {
		t.Fatal(err)
	}

	want := map[int]pos{1: {0, 0}, 2: {0, 110}, 3: {110, 110}}
	for _, el := range a.Elements() {
		if got := (pos{el.X, el.Y}); got != want[el.TileID] {
			t.Errorf("tile %d at %v, want %v", el.TileID, got, want[el.TileID])
		}
	}

	if err := a.Removed(2); err != nil {
		t.Fatal(err)
	}
	if len(p.Items()) != 2 {
		t.Errorf("packer holds %d items, want 2", len(p.Items()))
	}
}
