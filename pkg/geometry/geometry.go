// Package geometry converts grid units into pixel dimensions.
//
// Grid units are the only authoritative tile size. Pixel sizes are derived
// for display and packing and are never read back to recover units.
//
// A tile spanning n units covers n cells and the n-1 gutters between them:
//
//	pixels = n*(cellSize+margin) - margin
//
// With the default 100px cells and 10px margin a 2-unit tile is 210px.
package geometry

import (
	"github.com/matzehuels/bentogrid/pkg/errors"
)

// Default grid constants.
const (
	DefaultCellSize = 100
	DefaultMargin   = 10
)

// Size is a pixel width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ToPixels converts a unit count to pixels for the given cell size and margin.
func ToPixels(units, cellSize, margin int) int {
	return units*(cellSize+margin) - margin
}

// Converter maps grid units to pixels for a fixed cell size and margin.
// The zero value is not valid; use [Default] or fill both fields.
type Converter struct {
	CellSize int
	Margin   int
}

// Default returns a converter with the default 100px cell and 10px margin.
func Default() Converter {
	return Converter{CellSize: DefaultCellSize, Margin: DefaultMargin}
}

// Validate checks that the converter describes a usable grid.
func (c Converter) Validate() error {
	if c.CellSize < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "cell size must be at least 1, got %d", c.CellSize)
	}
	if c.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "margin must not be negative, got %d", c.Margin)
	}
	return nil
}

// Pixels converts units to pixels.
func (c Converter) Pixels(units int) int {
	return ToPixels(units, c.CellSize, c.Margin)
}

// Pitch is the distance in pixels between the left edges of two adjacent cells.
func (c Converter) Pitch() int {
	return c.CellSize + c.Margin
}

// Offset returns the pixel offset of the cell at the given column or row index.
func (c Converter) Offset(index int) int {
	return index * c.Pitch()
}

// Size converts a width/height in units to a pixel size.
func (c Converter) Size(widthUnits, heightUnits int) Size {
	return Size{Width: c.Pixels(widthUnits), Height: c.Pixels(heightUnits)}
}
