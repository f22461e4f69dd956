package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// SchemaVersion is the newest document version this package writes and reads.
const SchemaVersion = 1

// document is the versioned envelope.
type document struct {
	SchemaVersion int         `json:"schemaVersion"`
	Tiles         []grid.Tile `json:"tiles"`
}

// =============================================================================
// Encoding
// =============================================================================

// Marshal encodes tiles as a bare JSON array (the legacy document shape).
func Marshal(tiles []grid.Tile) ([]byte, error) {
	return json.Marshal(nonNil(tiles))
}

// MarshalDocument encodes tiles inside a versioned envelope.
func MarshalDocument(tiles []grid.Tile) ([]byte, error) {
	return json.Marshal(document{SchemaVersion: SchemaVersion, Tiles: nonNil(tiles)})
}

func nonNil(tiles []grid.Tile) []grid.Tile {
	if tiles == nil {
		return []grid.Tile{}
	}
	return tiles
}

// =============================================================================
// Decoding
// =============================================================================

// Unmarshal decodes a legacy or versioned document into tiles.
// Any structural problem is reported as a MALFORMED_DOCUMENT error.
func Unmarshal(data []byte) ([]grid.Tile, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.Malformed(nil, "empty document")
	}

	var elems []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, errors.Malformed(err, "decode tile array")
		}
	case '{':
		var err error
		if elems, err = decodeEnvelope(trimmed); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Malformed(nil, "document must be a JSON array of tiles")
	}

	tiles := make([]grid.Tile, 0, len(elems))
	seen := make(map[int]struct{}, len(elems))
	for i, raw := range elems {
		t, err := decodeTile(raw)
		if err != nil {
			return nil, errors.Malformed(err, "tile at index %d", i)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, errors.Malformed(nil, "duplicate tile id %d at index %d", t.ID, i)
		}
		seen[t.ID] = struct{}{}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

func decodeEnvelope(data []byte) ([]json.RawMessage, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Malformed(err, "decode document")
	}

	rawVersion, ok := env["schemaVersion"]
	if !ok {
		return nil, errors.Malformed(nil, "document must be a JSON array of tiles")
	}
	version, err := parseInt(rawVersion)
	if err != nil {
		return nil, errors.Malformed(err, "schemaVersion")
	}
	if version < 1 || version > SchemaVersion {
		return nil, errors.Malformed(nil, "unsupported schemaVersion %d (supported: 1..%d)", version, SchemaVersion)
	}

	rawTiles, ok := env["tiles"]
	if !ok || isNull(rawTiles) {
		return nil, errors.Malformed(nil, "document has no tiles array")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(rawTiles, &elems); err != nil {
		return nil, errors.Malformed(err, "tiles must be an array")
	}
	return elems, nil
}

func decodeTile(raw json.RawMessage) (grid.Tile, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return grid.Tile{}, fmt.Errorf("tile must be an object")
	}

	var t grid.Tile
	var err error
	if t.ID, err = positiveInt(fields, "id"); err != nil {
		return grid.Tile{}, err
	}
	if t.WidthUnits, err = unitsInt(fields, "widthUnits"); err != nil {
		return grid.Tile{}, err
	}
	if t.HeightUnits, err = unitsInt(fields, "heightUnits"); err != nil {
		return grid.Tile{}, err
	}
	if t.Image, err = optionalString(fields, "image"); err != nil {
		return grid.Tile{}, err
	}
	if t.Link, err = optionalString(fields, "link"); err != nil {
		return grid.Tile{}, err
	}
	return t, nil
}

func positiveInt(fields map[string]json.RawMessage, name string) (int, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return 0, fmt.Errorf("missing %s", name)
	}
	n, err := parseInt(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be at least 1, got %d", name, n)
	}
	return n, nil
}

func unitsInt(fields map[string]json.RawMessage, name string) (int, error) {
	n, err := positiveInt(fields, name)
	if err != nil {
		return 0, err
	}
	if n > grid.MaxUnits {
		return 0, fmt.Errorf("%s must be at most %d, got %d", name, grid.MaxUnits, n)
	}
	return n, nil
}

// parseInt accepts only JSON integer literals: no strings, fractions or exponents.
func parseInt(raw json.RawMessage) (int, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return 0, fmt.Errorf("not an integer: %s", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %s", s)
	}
	return n, nil
}

func optionalString(fields map[string]json.RawMessage, name string) (*string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%s must be a string or null", name)
	}
	return &s, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

// =============================================================================
// Codec
// =============================================================================

// Codec selects the document shape used for writing. Reading always accepts
// both shapes.
type Codec struct {
	// Versioned writes the {"schemaVersion", "tiles"} envelope instead of a bare array.
	Versioned bool
	// Indent pretty-prints the output with two-space indentation.
	Indent bool
}

// Encode serializes tiles in the configured shape.
func (c Codec) Encode(tiles []grid.Tile) ([]byte, error) {
	var v any = nonNil(tiles)
	if c.Versioned {
		v = document{SchemaVersion: SchemaVersion, Tiles: nonNil(tiles)}
	}
	if c.Indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// Decode parses a document of either shape.
func (c Codec) Decode(data []byte) ([]grid.Tile, error) {
	return Unmarshal(data)
}

// Write encodes tiles to w followed by a newline.
func (c Codec) Write(w io.Writer, tiles []grid.Tile) error {
	data, err := c.Encode(tiles)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Read decodes a document from r.
func (c Codec) Read(r io.Reader) ([]grid.Tile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return c.Decode(data)
}

// WriteFile writes tiles to a JSON file.
func (c Codec) WriteFile(path string, tiles []grid.Tile) error {
	data, err := c.Encode(tiles)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadFile reads tiles from a JSON file.
func (c Codec) ReadFile(path string) ([]grid.Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Decode(data)
}
