package grid

import (
	"slices"

	"github.com/matzehuels/bentogrid/pkg/errors"
)

// Store owns the ordered tile collection of one grid.
//
// The zero value is not usable; create stores with [NewStore].
// Store is not safe for concurrent use without external synchronization.
type Store struct {
	tiles []Tile

	// highWater is the largest id this store has ever held. New ids are
	// allocated above it so that removed ids are never handed out again by
	// this store. It is not persisted; a store rebuilt with Replace starts
	// from the largest loaded id.
	highWater int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of tiles.
func (s *Store) Len() int {
	return len(s.tiles)
}

// Add appends a new 1x1 tile without image or link and returns it.
// The id is one greater than every id the store has held so far.
func (s *Store) Add() Tile {
	id := max(s.maxID(), s.highWater) + 1
	s.highWater = id

	t := Tile{ID: id, WidthUnits: 1, HeightUnits: 1}
	s.tiles = append(s.tiles, t)
	return t.Clone()
}

// Get returns a copy of the tile with the given id.
func (s *Store) Get(id int) (Tile, error) {
	i := s.index(id)
	if i < 0 {
		return Tile{}, errors.NotFound(id)
	}
	return s.tiles[i].Clone(), nil
}

// Resize grows or shrinks a tile by step units in the given direction.
// The result is clamped to [1, MaxUnits] in each dimension.
// A step below 1 is treated as 1, a step above MaxUnits as MaxUnits.
func (s *Store) Resize(id int, dir Direction, step int) (Tile, error) {
	if !dir.Valid() {
		return Tile{}, errors.New(errors.ErrCodeInvalidInput, "invalid direction %q", dir)
	}
	i := s.index(id)
	if i < 0 {
		return Tile{}, errors.NotFound(id)
	}
	step = min(max(step, 1), MaxUnits)

	// Units and step are both bounded by MaxUnits, so the sums cannot overflow.
	dw, dh := dir.delta(step)
	t := &s.tiles[i]
	t.WidthUnits = clampUnits(t.WidthUnits + dw)
	t.HeightUnits = clampUnits(t.HeightUnits + dh)
	return t.Clone(), nil
}

// UpdateImage sets the tile's image. Empty data clears the image.
func (s *Store) UpdateImage(id int, data string) (Tile, error) {
	i := s.index(id)
	if i < 0 {
		return Tile{}, errors.NotFound(id)
	}

	t := &s.tiles[i]
	if data == "" {
		t.Image = nil
	} else {
		t.Image = &data
	}
	return t.Clone(), nil
}

// UpdateLink commits link text to the tile. The text is normalized with
// [NormalizeLink] and stored as is; an empty result clears the link. Normalization happens
// here, once per commit, never while the text is still being edited.
func (s *Store) UpdateLink(id int, text string) (Tile, error) {
	i := s.index(id)
	if i < 0 {
		return Tile{}, errors.NotFound(id)
	}

	link := NormalizeLink(text)
	t := &s.tiles[i]
	if link == "" {
		t.Link = nil
	} else {
		t.Link = &link
	}
	return t.Clone(), nil
}

// Remove deletes the tile with the given id.
// Removing an unknown id is a NOT_FOUND error and changes nothing.
func (s *Store) Remove(id int) error {
	i := s.index(id)
	if i < 0 {
		return errors.NotFound(id)
	}
	s.tiles = slices.Delete(s.tiles, i, i+1)
	return nil
}

// Move places the tile with the given id at position index, shifting the
// others. Index is clamped to the collection bounds. It returns the index the
// tile ended up at.
func (s *Store) Move(id, index int) (int, error) {
	i := s.index(id)
	if i < 0 {
		return 0, errors.NotFound(id)
	}
	index = min(max(index, 0), len(s.tiles)-1)
	if index == i {
		return i, nil
	}

	t := s.tiles[i]
	s.tiles = slices.Delete(s.tiles, i, i+1)
	s.tiles = slices.Insert(s.tiles, index, t)
	return index, nil
}

// Snapshot returns a deep copy of the collection in display order.
func (s *Store) Snapshot() []Tile {
	out := make([]Tile, len(s.tiles))
	for i, t := range s.tiles {
		out[i] = t.Clone()
	}
	return out
}

// Replace swaps the whole collection for tiles.
// The new collection is validated first; on error the store is unchanged.
func (s *Store) Replace(tiles []Tile) error {
	if err := ValidateCollection(tiles); err != nil {
		return err
	}

	next := make([]Tile, len(tiles))
	for i, t := range tiles {
		next[i] = t.Clone()
	}
	s.tiles = next
	s.highWater = max(s.highWater, s.maxID())
	return nil
}

// ValidateCollection checks per-tile invariants and id uniqueness.
func ValidateCollection(tiles []Tile) error {
	seen := make(map[int]struct{}, len(tiles))
	for _, t := range tiles {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate tile id %d", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

func clampUnits(n int) int {
	return min(max(n, 1), MaxUnits)
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.tiles, func(t Tile) bool { return t.ID == id })
}

func (s *Store) maxID() int {
	m := 0
	for _, t := range s.tiles {
		m = max(m, t.ID)
	}
	return m
}
