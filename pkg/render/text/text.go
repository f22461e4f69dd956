// Package text draws a packed grid as lipgloss-styled terminal text.
//
// Every grid cell becomes a block of CellWidth x CellHeight characters. Tiles
// are drawn as rounded boxes at the cell position the layout engine assigned,
// so the drawing matches the SVG output at a coarser resolution.
package text

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/layout"
)

// Default character dimensions of one grid cell, including the gap.
const (
	DefaultCellWidth  = 10
	DefaultCellHeight = 4
)

const (
	markLink  = "↗"
	markImage = "▣"
)

var (
	styleBorder   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true)
	styleLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	styleLink     = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleImage    = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

type kind uint8

const (
	kindNone kind = iota
	kindBorder
	kindSelected
	kindLabel
	kindLink
	kindImage
)

func (k kind) style() lipgloss.Style {
	switch k {
	case kindBorder:
		return styleBorder
	case kindSelected:
		return styleSelected
	case kindLabel:
		return styleLabel
	case kindLink:
		return styleLink
	case kindImage:
		return styleImage
	}
	return lipgloss.NewStyle()
}

type cell struct {
	ch   rune
	kind kind
}

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	conv     geometry.Converter
	cellW    int
	cellH    int
	selected int
	canvas   [][]cell
}

// WithSelected highlights the tile with the given id.
func WithSelected(id int) Option { return func(r *renderer) { r.selected = id } }

// WithCellSize sets the characters per grid cell. Values below 3 are raised to 3.
func WithCellSize(width, height int) Option {
	return func(r *renderer) { r.cellW, r.cellH = max(width, 3), max(height, 3) }
}

// Render draws elements. Positions and sizes are mapped from pixels to cells
// with conv.
func Render(els []*layout.Element, conv geometry.Converter, opts ...Option) string {
	r := &renderer{conv: conv, cellW: DefaultCellWidth, cellH: DefaultCellHeight}
	for _, opt := range opts {
		opt(r)
	}
	for _, el := range els {
		r.drawTile(el)
	}
	return r.String()
}

func (r *renderer) cells(px int) int {
	return max(1, (px+r.conv.Margin+r.conv.Pitch()-1)/r.conv.Pitch())
}

func (r *renderer) drawTile(el *layout.Element) {
	x0 := (el.X / r.conv.Pitch()) * r.cellW
	y0 := (el.Y / r.conv.Pitch()) * r.cellH
	w := r.cells(el.Width)*r.cellW - 1
	h := r.cells(el.Height)*r.cellH - 1

	border := kindBorder
	if el.TileID == r.selected {
		border = kindSelected
	}

	r.put(x0, y0, '╭', border)
	r.put(x0+w-1, y0, '╮', border)
	r.put(x0, y0+h-1, '╰', border)
	r.put(x0+w-1, y0+h-1, '╯', border)
	for x := x0 + 1; x < x0+w-1; x++ {
		r.put(x, y0, '─', border)
		r.put(x, y0+h-1, '─', border)
	}
	for y := y0 + 1; y < y0+h-1; y++ {
		r.put(x0, y, '│', border)
		r.put(x0+w-1, y, '│', border)
		for x := x0 + 1; x < x0+w-1; x++ {
			r.put(x, y, ' ', kindNone)
		}
	}

	inner := w - 2
	x := r.write(x0+1, y0+1, fmt.Sprintf("#%d", el.TileID), kindLabel, inner)
	if el.Tile.HasLink() {
		x = r.write(x+1, y0+1, markLink, kindLink, x0+1+inner-x-1)
	}
	if el.Tile.HasImage() {
		r.write(x+1, y0+1, markImage, kindImage, x0+1+inner-x-1)
	}

	if h-2 >= 2 && el.Tile.HasLink() {
		r.write(x0+1, y0+2, shortLink(el.Tile.LinkURL(), inner), kindLink, inner)
	}
}

// write puts s at (x, y), cut to limit runes, and returns the column after it.
func (r *renderer) write(x, y int, s string, k kind, limit int) int {
	n := 0
	for _, ch := range s {
		if n >= limit {
			break
		}
		r.put(x+n, y, ch, k)
		n++
	}
	return x + n
}

func (r *renderer) put(x, y int, ch rune, k kind) {
	for len(r.canvas) <= y {
		r.canvas = append(r.canvas, nil)
	}
	row := r.canvas[y]
	for len(row) <= x {
		row = append(row, cell{ch: ' '})
	}
	row[x] = cell{ch: ch, kind: k}
	r.canvas[y] = row
}

// String renders the canvas, styling runs of equal kind together.
func (r *renderer) String() string {
	lines := make([]string, len(r.canvas))
	for i, row := range r.canvas {
		var b strings.Builder
		var run []rune
		cur := kindNone
		flush := func() {
			if len(run) == 0 {
				return
			}
			if cur == kindNone {
				b.WriteString(string(run))
			} else {
				b.WriteString(cur.style().Render(string(run)))
			}
			run = run[:0]
		}
		end := len(row)
		for end > 0 && row[end-1].ch == ' ' {
			end--
		}
		for _, c := range row[:end] {
			if c.kind != cur {
				flush()
				cur = c.kind
			}
			run = append(run, c.ch)
		}
		flush()
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// shortLink drops the scheme and cuts the link to fit n columns.
func shortLink(link string, n int) string {
	s := link
	if u, err := url.Parse(link); err == nil && u.Host != "" {
		s = u.Host + strings.TrimSuffix(u.EscapedPath(), "/")
	}
	r := []rune(s)
	if len(r) > n {
		if n <= 1 {
			return string(r[:max(n, 0)])
		}
		return string(r[:n-1]) + "…"
	}
	return s
}
