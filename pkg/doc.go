// Package pkg provides the core libraries for bentogrid.
//
// # Overview
//
// A bento grid is an ordered collection of tiles. Each tile has a size in
// whole grid units and may carry an image or a link. The libraries are
// organized in layers:
//
//  1. [grid] and [geometry] - the tile collection and unit-to-pixel math
//  2. [codec] and [kv] - documents and the stores that keep them
//  3. [layout] - the boundary to a packing engine, kept in sync with the tiles
//  4. [controller] - user intents applied to all of the above in order
//  5. [render] - SVG, JSON and terminal views of a packed grid
//
// # Architecture
//
// The data flow for one intent:
//
//	intent (add, resize, link, image, remove, move, load)
//	         ↓
//	    [controller] package (validate and apply)
//	         ↓
//	    [grid] package (mutate the collection)
//	         ↓
//	    [layout] package (deferred engine sync, then re-layout)
//	         ↓
//	    [render] package (SVG / JSON / text)
//
// Save and Load go through [codec] and a [kv] store. Load always ends with a
// full resync of the layout engine.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/bentogrid/pkg/controller"
//	    "github.com/matzehuels/bentogrid/pkg/grid"
//	    "github.com/matzehuels/bentogrid/pkg/kv"
//	    "github.com/matzehuels/bentogrid/pkg/render"
//	    "github.com/matzehuels/bentogrid/pkg/render/svg"
//	)
//
//	ctrl, _ := controller.New(controller.Options{
//	    Store: kv.NewMemoryStore(),
//	    Key:   "bento:grid:default",
//	})
//	res, _ := ctrl.Dispatch(ctx, controller.AddTile{})
//	ctrl.Dispatch(ctx, controller.ResizeTile{ID: res.Tile.ID, Direction: grid.Right})
//	ctrl.Dispatch(ctx, controller.Save{})
//
//	els := ctrl.Adapter().Elements()
//	os.WriteFile("grid.svg", svg.Render(els, render.Extent(els)), 0o644)
//
// # Errors
//
// Every package reports failures as [errors] coded errors. None of them are
// fatal: a failed intent leaves the collection in its last valid state, and
// a failed layout sync is retried with a full resync on the next intent.
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/grid
// [geometry]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/geometry
// [codec]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/codec
// [kv]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/kv
// [layout]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/layout
// [controller]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/controller
// [render]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/bentogrid/pkg/errors
package pkg
