// Package upload turns raw image bytes into the data URLs stored on tiles.
//
// Decoding runs on its own goroutine and delivers exactly one [Result] on a
// buffered channel, so a caller that stops waiting never leaks the decoder.
// The image header is sniffed with the standard library and golang.org/x/image
// decoders; anything that is not a recognised image is an IMAGE_DECODE error.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"io"

	// Register the decoders used for header sniffing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/bentogrid/pkg/errors"
)

// DefaultMaxBytes bounds the size of an uploaded image.
const DefaultMaxBytes = 10 << 20

// Result is the outcome of one decode.
type Result struct {
	Data   string // data URL, empty on error
	Format string // image format name, e.g. "png"
	Width  int
	Height int
	Err    error
}

// Decoder reads images into data URLs.
type Decoder struct {
	// MaxBytes is the largest accepted input. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// Start begins decoding r in the background. The returned channel receives
// exactly one Result and is then closed.
func (d Decoder) Start(r io.Reader) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- d.decode(r)
	}()
	return ch
}

// Decode decodes r synchronously.
func (d Decoder) Decode(r io.Reader) (string, error) {
	res := d.decode(r)
	return res.Data, res.Err
}

// Wait blocks until the decode delivers its result or ctx is done.
// Cancelling ctx stops the wait, not the decode.
func Wait(ctx context.Context, ch <-chan Result) (Result, error) {
	select {
	case res := <-ch:
		return res, res.Err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (d Decoder) decode(r io.Reader) Result {
	limit := d.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Result{Err: errors.Wrap(errors.ErrCodeImageDecode, err, "read image")}
	}
	if int64(len(data)) > limit {
		return Result{Err: errors.New(errors.ErrCodeImageDecode, "image larger than %d bytes", limit)}
	}
	if len(data) == 0 {
		return Result{Err: errors.New(errors.ErrCodeImageDecode, "empty image")}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{Err: errors.Wrap(errors.ErrCodeImageDecode, err, "unrecognised image")}
	}

	return Result{
		Data:   DataURL(MimeType(format), data),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
}

// MimeType returns the media type for an image format name.
func MimeType(format string) string {
	return "image/" + format
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
