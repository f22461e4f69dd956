// Package svg renders a packed grid as a standalone SVG document.
//
// Each tile is a rounded rectangle at its engine-assigned position. Tiles with
// an image embed it as an <image> clipped to the tile; tiles with a link are
// wrapped in an <a> element.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/layout"
)

const tileCSS = `
    .tile { fill: #f4f4f5; stroke: #d4d4d8; stroke-width: 1; transition: stroke-width 0.2s ease; }
    a:hover .tile { stroke: #0ea5e9; stroke-width: 2; }
    .tile-label { font: 12px sans-serif; fill: #71717a; }
    .tile-link { font: 11px sans-serif; fill: #0284c7; }`

// Option configures [Render].
type Option func(*renderer)

type renderer struct {
	radius     int
	padding    int
	background string
	labels     bool
}

// WithRadius sets the tile corner radius in pixels.
func WithRadius(r int) Option { return func(x *renderer) { x.radius = r } }

// WithPadding adds an outer padding around the grid.
func WithPadding(p int) Option { return func(x *renderer) { x.padding = p } }

// WithBackground fills the canvas with a CSS color.
func WithBackground(color string) Option { return func(x *renderer) { x.background = color } }

// WithLabels draws each tile's id and link text.
func WithLabels() Option { return func(x *renderer) { x.labels = true } }

// Render draws elements inside bounds.
func Render(els []*layout.Element, bounds geometry.Size, opts ...Option) []byte {
	r := renderer{radius: 12}
	for _, opt := range opts {
		opt(&r)
	}

	w := bounds.Width + 2*r.padding
	h := bounds.Height + 2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n", w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileCSS)

	renderDefs(&buf, els, r)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%d %d)">`+"\n", r.padding, r.padding)
	for _, el := range els {
		renderTile(&buf, el, r)
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

// renderDefs writes one clip path per image tile.
func renderDefs(buf *bytes.Buffer, els []*layout.Element, r renderer) {
	var open bool
	for _, el := range els {
		if !el.Tile.HasImage() {
			continue
		}
		if !open {
			buf.WriteString("  <defs>\n")
			open = true
		}
		fmt.Fprintf(buf, `    <clipPath id="clip-%d"><rect x="%d" y="%d" width="%d" height="%d" rx="%d"/></clipPath>`+"\n",
			el.TileID, el.X, el.Y, el.Width, el.Height, r.radius)
	}
	if open {
		buf.WriteString("  </defs>\n")
	}
}

func renderTile(buf *bytes.Buffer, el *layout.Element, r renderer) {
	wrapURL(buf, el.Tile.LinkURL(), func() {
		fmt.Fprintf(buf, `    <rect id="tile-%d" class="tile" x="%d" y="%d" width="%d" height="%d" rx="%d"/>`+"\n",
			el.TileID, el.X, el.Y, el.Width, el.Height, r.radius)

		if el.Tile.HasImage() {
			fmt.Fprintf(buf, `    <image href="%s" x="%d" y="%d" width="%d" height="%d" preserveAspectRatio="xMidYMid slice" clip-path="url(#clip-%d)"/>`+"\n",
				escape(el.Tile.ImageData()), el.X, el.Y, el.Width, el.Height, el.TileID)
		}

		if r.labels {
			fmt.Fprintf(buf, `    <text class="tile-label" x="%d" y="%d">#%d</text>`+"\n", el.X+8, el.Y+18, el.TileID)
			if link := el.Tile.LinkURL(); link != "" {
				fmt.Fprintf(buf, `    <text class="tile-link" x="%d" y="%d">%s</text>`+"\n",
					el.X+8, el.Y+el.Height-10, escape(truncate(link, el.Width/7)))
			}
		}
	})
}

// wrapURL wraps the output of fn in a link when url is set.
func wrapURL(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `    <a href="%s" target="_blank">`+"\n", escape(url))
	}
	fn()
	if url != "" {
		buf.WriteString("    </a>\n")
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s)) // bytes.Buffer writes never fail
	return buf.String()
}

func truncate(s string, maxChars int) string {
	if maxChars < 3 || len(s) <= maxChars {
		return s
	}
	return s[:maxChars-2] + ".."
}
