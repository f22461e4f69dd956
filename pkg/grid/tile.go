package grid

import (
	"strings"

	"github.com/matzehuels/bentogrid/pkg/errors"
)

// MaxUnits is the largest width or height a tile may have, in cells.
// Layout engines allocate per cell, so sizes are bounded.
const MaxUnits = 1024

// Tile is a single cell entity of the grid.
//
// Image and Link are nil when absent. They are serialized as JSON null, which
// is why they are pointers instead of empty strings.
type Tile struct {
	ID          int     `json:"id" bson:"id"`
	WidthUnits  int     `json:"widthUnits" bson:"width_units"`
	HeightUnits int     `json:"heightUnits" bson:"height_units"`
	Image       *string `json:"image" bson:"image"`
	Link        *string `json:"link" bson:"link"`
}

// Clone returns a deep copy of the tile. Callers that hand tiles to the
// outside world get clones so the store's records cannot be mutated through
// a shared pointer.
func (t Tile) Clone() Tile {
	c := t
	if t.Image != nil {
		img := *t.Image
		c.Image = &img
	}
	if t.Link != nil {
		link := *t.Link
		c.Link = &link
	}
	return c
}

// HasImage reports whether the tile carries an image.
func (t Tile) HasImage() bool { return t.Image != nil }

// HasLink reports whether the tile carries a link.
func (t Tile) HasLink() bool { return t.Link != nil }

// ImageData returns the image string or "" when absent.
func (t Tile) ImageData() string {
	if t.Image == nil {
		return ""
	}
	return *t.Image
}

// LinkURL returns the link or "" when absent.
func (t Tile) LinkURL() string {
	if t.Link == nil {
		return ""
	}
	return *t.Link
}

// Validate checks the per-tile invariants.
func (t Tile) Validate() error {
	if t.ID < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "tile id must be at least 1, got %d", t.ID)
	}
	if t.WidthUnits < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "tile %d: widthUnits must be at least 1, got %d", t.ID, t.WidthUnits)
	}
	if t.HeightUnits < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "tile %d: heightUnits must be at least 1, got %d", t.ID, t.HeightUnits)
	}
	if t.WidthUnits > MaxUnits || t.HeightUnits > MaxUnits {
		return errors.New(errors.ErrCodeInvalidInput, "tile %d: size %dx%d exceeds %d units", t.ID, t.WidthUnits, t.HeightUnits, MaxUnits)
	}
	return nil
}

// NormalizeLink canonicalizes user-entered link text.
// Surrounding whitespace is trimmed, and a non-empty link without an http://
// or https:// prefix (case-insensitive) gets http:// prepended.
// An empty result means "no link".
func NormalizeLink(text string) string {
	link := strings.TrimSpace(text)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "http://" + link
}
