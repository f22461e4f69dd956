package grid

import (
	"strings"

	"github.com/matzehuels/bentogrid/pkg/errors"
)

// Direction is a resize direction.
//
// Up and Down shrink and grow the height, Left and Right shrink and grow the
// width. The naming follows the resize buttons on a tile: "down" drags the
// bottom edge down.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists all valid directions.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection parses a direction name (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid direction %q (want up, down, left or right)", s)
	}
	return d, nil
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return d
}

// delta returns the width and height change for a step in direction d.
func (d Direction) delta(step int) (dw, dh int) {
	switch d {
	case Up:
		return 0, -step
	case Down:
		return 0, step
	case Left:
		return -step, 0
	case Right:
		return step, 0
	}
	return 0, 0
}
