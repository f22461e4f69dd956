package controller

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bentogrid/pkg/codec"
	"github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/grid"
	"github.com/matzehuels/bentogrid/pkg/kv"
	"github.com/matzehuels/bentogrid/pkg/layout"
	"github.com/matzehuels/bentogrid/pkg/observability"
	"github.com/matzehuels/bentogrid/pkg/upload"
)

// Renderer is notified after every mutation, before the deferred layout
// sync runs. It receives the collection in display order.
type Renderer interface {
	Commit(tiles []grid.Tile)
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(tiles []grid.Tile)

// Commit calls f(tiles).
func (f RendererFunc) Commit(tiles []grid.Tile) { f(tiles) }

// Options configures a [Controller].
type Options struct {
	// Store persists documents. Required for Save and Load.
	Store kv.Store
	// Key is the store key of this grid's document.
	Key string
	// Codec encodes saved documents. Decoding accepts every known shape.
	Codec codec.Codec
	// Converter maps grid units to pixels. Zero means geometry.Default().
	Converter geometry.Converter
	// Engine is the layout engine handle. Nil means a [layout.Packer]
	// with Columns columns.
	Engine  layout.Engine
	Columns int
	// Renderer, when set, is committed after every mutation.
	Renderer Renderer
	// Decoder decodes uploaded images.
	Decoder upload.Decoder
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Result describes the outcome of an intent.
type Result struct {
	// Tile is the affected tile after the intent, if the intent targets one.
	Tile *grid.Tile
	// Tiles is the collection after the intent.
	Tiles []grid.Tile
	// Index is the final position of a moved tile.
	Index int
	// SyncErr holds a non-fatal layout sync failure.
	SyncErr error
}

// Controller orchestrates one grid. It is not safe for concurrent use.
type Controller struct {
	tiles   *grid.Store
	adapter *layout.Adapter
	engine  layout.Engine
	queue   layout.Queue

	store    kv.Store
	key      string
	codec    codec.Codec
	renderer Renderer
	decoder  upload.Decoder
	logger   *log.Logger
}

// New creates a controller with an empty collection.
func New(opts Options) (*Controller, error) {
	conv := opts.Converter
	if conv == (geometry.Converter{}) {
		conv = geometry.Default()
	}
	if err := conv.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	engine := opts.Engine
	if engine == nil {
		engine = layout.NewPacker(conv, opts.Columns)
	}

	return &Controller{
		tiles:    grid.NewStore(),
		adapter:  layout.NewAdapter(engine, conv, logger),
		engine:   engine,
		store:    opts.Store,
		key:      opts.Key,
		codec:    opts.Codec,
		renderer: opts.Renderer,
		decoder:  opts.Decoder,
		logger:   logger,
	}, nil
}

// Tiles returns a snapshot of the collection in display order.
func (c *Controller) Tiles() []grid.Tile { return c.tiles.Snapshot() }

// Tile returns a copy of one tile.
func (c *Controller) Tile(id int) (grid.Tile, error) { return c.tiles.Get(id) }

// Adapter returns the layout adapter, whose elements carry the packed positions.
func (c *Controller) Adapter() *layout.Adapter { return c.adapter }

// Engine returns the layout engine handle.
func (c *Controller) Engine() layout.Engine { return c.engine }

// Key returns the store key of this grid.
func (c *Controller) Key() string { return c.key }

// Dispatch applies one intent.
//
// Pending syncs from an earlier intent are flushed first. The returned error
// is the intent's failure; a layout sync failure is reported in
// Result.SyncErr instead.
func (c *Controller) Dispatch(ctx context.Context, intent Intent) (Result, error) {
	start := time.Now()
	pendingErr := c.flush()

	res, err := c.apply(ctx, intent)
	if res.SyncErr == nil {
		res.SyncErr = pendingErr
	}

	observability.Grid().OnIntent(ctx, intent.Name(), time.Since(start), err)
	if err != nil {
		c.logger.Debug("intent failed", "intent", intent.Name(), "err", err)
		return res, err
	}
	c.logger.Debug("intent applied", "intent", intent.Name(), "tiles", c.tiles.Len())
	return res, nil
}

func (c *Controller) apply(ctx context.Context, intent Intent) (Result, error) {
	switch in := intent.(type) {
	case AddTile:
		t := c.tiles.Add()
		c.queue.Defer("add", func() error { return c.adapter.Added(t) })
		return c.commit(&t), nil

	case ResizeTile:
		t, err := c.tiles.Resize(in.ID, in.Direction, in.Step)
		if err != nil {
			return Result{}, err
		}
		c.queue.Defer("resize", func() error { return c.adapter.Resized(t) })
		return c.commit(&t), nil

	case SetImage:
		t, err := c.tiles.UpdateImage(in.ID, in.Data)
		if err != nil {
			return Result{}, err
		}
		c.queue.Defer("image", func() error { return c.adapter.Updated(t) })
		return c.commit(&t), nil

	case SetLink:
		t, err := c.tiles.UpdateLink(in.ID, in.Text)
		if err != nil {
			return Result{}, err
		}
		c.queue.Defer("link", func() error { return c.adapter.Updated(t) })
		return c.commit(&t), nil

	case RemoveTile:
		if err := c.tiles.Remove(in.ID); err != nil {
			return Result{}, err
		}
		c.queue.Defer("remove", func() error { return c.adapter.Removed(in.ID) })
		return c.commit(nil), nil

	case MoveTile:
		idx, err := c.tiles.Move(in.ID, in.Index)
		if err != nil {
			return Result{}, err
		}
		c.queue.Defer("move", c.resync)
		res := c.commit(nil)
		res.Index = idx
		return res, nil

	case Save:
		return c.save(ctx)

	case Load:
		data, err := c.read(ctx)
		if err != nil {
			return Result{}, err
		}
		return c.load(data)

	case LoadDocument:
		return c.load(in.Data)

	default:
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "unknown intent %T", intent)
	}
}

// Upload decodes an image and commits it to a tile as a data URL.
//
// The tile is checked before decoding starts and is not touched until the
// decode completes. A decode failure is IMAGE_DECODE and leaves the tile
// unchanged. Cancelling ctx stops the wait, not the decode.
func (c *Controller) Upload(ctx context.Context, id int, r io.Reader) (Result, error) {
	if _, err := c.tiles.Get(id); err != nil {
		return Result{}, err
	}
	res, err := upload.Wait(ctx, c.decoder.Start(r))
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug("image decoded", "tile", id, "format", res.Format, "width", res.Width, "height", res.Height)
	return c.Dispatch(ctx, SetImage{ID: id, Data: res.Data})
}

// commit runs the render commit and then the deferred syncs it enables.
func (c *Controller) commit(t *grid.Tile) Result {
	snapshot := c.tiles.Snapshot()
	if c.renderer != nil {
		c.renderer.Commit(snapshot)
	}
	return Result{Tile: t, Tiles: snapshot, SyncErr: c.flush()}
}

func (c *Controller) flush() error {
	err := c.queue.Flush()
	if err != nil {
		c.logger.Warn("layout sync failed", "err", err, "stale", c.adapter.Stale())
	}
	return err
}

func (c *Controller) resync() error {
	return c.adapter.Resync(c.tiles.Snapshot())
}

func (c *Controller) save(ctx context.Context) (Result, error) {
	if err := c.requireStore(); err != nil {
		return Result{}, err
	}
	tiles := c.tiles.Snapshot()
	data, err := c.codec.Encode(tiles)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	if err := c.store.Set(ctx, c.key, data, 0); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeStore, err, "save %s", c.key)
	}
	c.logger.Info("grid saved", "key", c.key, "tiles", len(tiles), "bytes", len(data))
	return Result{Tiles: tiles}, nil
}

func (c *Controller) read(ctx context.Context) ([]byte, error) {
	if err := c.requireStore(); err != nil {
		return nil, err
	}
	data, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load %s", c.key)
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no grid saved under %q", c.key)
	}
	return data, nil
}

// load decodes a document and replaces the collection. Any failure leaves
// the collection unchanged.
func (c *Controller) load(data []byte) (Result, error) {
	tiles, err := c.codec.Decode(data)
	if err != nil {
		return Result{}, err
	}
	if err := c.tiles.Replace(tiles); err != nil {
		return Result{}, errors.Malformed(err, "invalid document")
	}
	c.queue.Defer("load", c.resync)
	c.logger.Info("grid loaded", "key", c.key, "tiles", len(tiles))
	return c.commit(nil), nil
}

func (c *Controller) requireStore() error {
	if c.store == nil || c.key == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no key-value store configured")
	}
	return nil
}
