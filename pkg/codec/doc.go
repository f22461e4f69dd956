// Package codec serializes a tile collection to its persisted JSON document
// and parses it back.
//
// # Document Shapes
//
// The legacy document is a bare array of tile objects:
//
//	[
//	  {"id": 1, "widthUnits": 2, "heightUnits": 1, "image": null, "link": "http://example.com"}
//	]
//
// The versioned document wraps the same array in an envelope:
//
//	{"schemaVersion": 1, "tiles": [ ... ]}
//
// [Unmarshal] accepts both. [Marshal] writes the legacy shape and
// [MarshalDocument] the versioned one; [Codec] picks between them.
//
// # Validation
//
// Decoding fails with a MALFORMED_DOCUMENT error when the text is not JSON,
// when the top level is neither an array nor an envelope, or when any element
// lacks an integer id, widthUnits or heightUnits of at least 1. Duplicate ids
// are rejected, and image/link must be a string or null. Unknown fields are
// ignored so that newer writers stay readable.
//
// # Round Trip
//
// For every valid collection c, Unmarshal(Marshal(c)) equals c field by field
// with order preserved. The same holds for MarshalDocument.
package codec
