// Package render turns a packed grid into output formats.
//
// The input is always the element list of a [layout.Adapter] after the engine
// has laid it out: pixel sizes derived from tile units, plus engine-assigned
// positions. Nothing here reads geometry back into the model.
//
// Output formats:
//
//   - [Layout] (this package): a JSON description of positions, served by the
//     HTTP API at GET /layout and written by `bento render -f json`
//   - [svg]: a standalone SVG document with linked tiles and embedded images
//   - [text]: a lipgloss-styled terminal drawing, used by `bento show` and the TUI
//
//	els := adapter.Elements()
//	doc := svg.Render(els, packer.Bounds())
//	fmt.Print(text.Render(els, conv, text.WithSelected(3)))
package render
