package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/geometry"
	"github.com/matzehuels/bentogrid/pkg/layout"
	"github.com/matzehuels/bentogrid/pkg/render"
	"github.com/matzehuels/bentogrid/pkg/render/svg"
	"github.com/matzehuels/bentogrid/pkg/render/text"
)

const (
	formatSVG  = "svg"
	formatJSON = "json"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatSVG: true, formatJSON: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path, or base path for several formats
	formats    []string // output formats: "svg", "json"
	labels     bool     // draw tile ids and links in the SVG
	padding    int      // outer padding in pixels
	background string   // canvas background color
}

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var selected int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Draw the packed grid in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			els := ws.ctrl.Adapter().Elements()
			if len(els) == 0 {
				printInfo("Grid %s is empty", StyleHighlight.Render(c.gridName))
				return nil
			}
			fmt.Println(text.Render(els, ws.cfg.Converter(), text.WithSelected(selected)))
			printNewline()
			printGridStats(ws.ctrl.Tiles(), ws.found)
			return nil
		},
	}

	cmd.Flags().IntVar(&selected, "select", 0, "highlight the tile with this id")
	return cmd
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{labels: true, padding: 10}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the packed grid to SVG or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateFormats(opts.formats); err != nil {
				return err
			}

			ws, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			return c.runRender(cmd.Context(), ws, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <grid>.<format>)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json (comma-separated)")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw tile ids and links")
	cmd.Flags().IntVar(&opts.padding, "padding", opts.padding, "outer padding in pixels")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (e.g. white, #fafafa)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, ws *workspace, opts renderOpts) error {
	prog := newProgress(loggerFromContext(ctx))
	els := ws.ctrl.Adapter().Elements()
	size := bounds(ws.ctrl.Engine(), els)

	for _, format := range opts.formats {
		var data []byte
		switch format {
		case formatSVG:
			svgOpts := []svg.Option{svg.WithPadding(opts.padding)}
			if opts.labels {
				svgOpts = append(svgOpts, svg.WithLabels())
			}
			if opts.background != "" {
				svgOpts = append(svgOpts, svg.WithBackground(opts.background))
			}
			data = svg.Render(els, size, svgOpts...)
		case formatJSON:
			var err error
			if data, err = render.RenderJSON(els, size, ws.cfg.Converter()); err != nil {
				return fmt.Errorf("encode layout: %w", err)
			}
		}

		path := outputPath(opts.output, c.gridName, format, len(opts.formats) > 1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	prog.done(fmt.Sprintf("Rendered %d tile(s)", len(els)), "formats", strings.Join(opts.formats, ","))
	return nil
}

// bounds returns the packed area, from the engine when it reports one.
func bounds(engine layout.Engine, els []*layout.Element) geometry.Size {
	if p, ok := engine.(*layout.Packer); ok {
		return p.Bounds()
	}
	return render.Extent(els)
}

// outputPath picks the file for one format. With several formats the
// output flag is a base path that gets the format as extension.
func outputPath(output, grid, format string, multi bool) string {
	switch {
	case output == "":
		return grid + "." + format
	case multi:
		return strings.TrimSuffix(output, "."+format) + "." + format
	default:
		return output
	}
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg' or 'json')", f)
		}
	}
	return nil
}
