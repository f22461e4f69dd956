package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/controller"
	"github.com/matzehuels/bentogrid/pkg/grid"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add 1x1 tiles to the grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx, nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			var ids []int
			for range max(count, 1) {
				res, err := ws.ctrl.Dispatch(ctx, controller.AddTile{})
				if err != nil {
					return err
				}
				c.warnSync(res)
				ids = append(ids, res.Tile.ID)
			}
			if err := ws.save(ctx); err != nil {
				return err
			}

			for _, id := range ids {
				printSuccess("Added tile %s", StyleNumber.Render(strconv.Itoa(id)))
			}
			printNextStep("Resize it", fmt.Sprintf("bento resize %d right", ids[len(ids)-1]))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of tiles to add")
	return cmd
}

// resizeCommand creates the resize command.
func (c *CLI) resizeCommand() *cobra.Command {
	var step int

	cmd := &cobra.Command{
		Use:               "resize <id> <up|down|left|right>",
		Short:             "Grow or shrink a tile by whole grid units",
		Long:              "Resize a tile. right and down grow it, left and up shrink it. Width and height never drop below one unit.",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeResize,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dir, err := grid.ParseDirection(args[1])
			if err != nil {
				return err
			}

			res, err := c.mutate(cmd.Context(), controller.ResizeTile{ID: id, Direction: dir, Step: step})
			if err != nil {
				return err
			}
			printSuccess("Tile %d is now %s", id, StyleValue.Render(fmt.Sprintf("%dx%d", res.Tile.WidthUnits, res.Tile.HeightUnits)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&step, "step", "s", 1, "units to grow or shrink by")
	return cmd
}

// linkCommand creates the link command.
func (c *CLI) linkCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "link <id> [url]",
		Short:             "Set or clear a tile's link",
		Long:              `Set a tile's link. A link without http:// or https:// gets http:// prepended. Omit the URL to clear the link.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeTileIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var text string
			if len(args) == 2 {
				text = args[1]
			}

			res, err := c.mutate(cmd.Context(), controller.SetLink{ID: id, Text: text})
			if err != nil {
				return err
			}
			if res.Tile.HasLink() {
				printSuccess("Tile %d links to %s", id, StyleLink.Render(res.Tile.LinkURL()))
			} else {
				printSuccess("Cleared link of tile %d", id)
			}
			return nil
		},
	}
}

// imageCommand creates the image command.
func (c *CLI) imageCommand() *cobra.Command {
	var clearImage bool

	cmd := &cobra.Command{
		Use:   "image <id> [file]",
		Short: "Set a tile's image from a file",
		Long:  `Set a tile's image. The file must be a PNG, JPEG, GIF, BMP, TIFF or WebP image; it is stored inline as a data URL. Use --clear to remove the image.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if clearImage {
				if _, err := c.mutate(cmd.Context(), controller.SetImage{ID: id}); err != nil {
					return err
				}
				printSuccess("Cleared image of tile %d", id)
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("image file required (or --clear)")
			}
			return c.runImage(cmd, id, args[1])
		},
	}

	cmd.Flags().BoolVar(&clearImage, "clear", false, "remove the image")
	return cmd
}

func (c *CLI) runImage(cmd *cobra.Command, id int, path string) error {
	ctx := cmd.Context()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ws, err := c.open(ctx, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	spinner := newSpinnerWithContext(ctx, "Decoding "+path+"...")
	spinner.Start()
	res, err := ws.ctrl.Upload(ctx, id, f)
	if err != nil {
		spinner.StopWithError("Decode failed")
		return err
	}
	spinner.Stop()
	c.warnSync(res)

	if err := ws.save(ctx); err != nil {
		return err
	}
	printSuccess("Set image of tile %d", id)
	printDetail("%s", imageSummary(res.Tile.ImageData()))
	return nil
}

// removeCommand creates the rm command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <id>...",
		Aliases:           []string{"remove"},
		Short:             "Remove tiles",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeEveryTileID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx, nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				res, err := ws.ctrl.Dispatch(ctx, controller.RemoveTile{ID: id})
				if err != nil {
					return err
				}
				c.warnSync(res)
			}
			if err := ws.save(ctx); err != nil {
				return err
			}
			printSuccess("Removed %d tile(s)", len(args))
			return nil
		},
	}
}

// moveCommand creates the mv command.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "mv <id> <position>",
		Short:             "Move a tile to a position in the display order (0-based)",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeTileIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}

			res, err := c.mutate(cmd.Context(), controller.MoveTile{ID: id, Index: index})
			if err != nil {
				return err
			}
			printSuccess("Tile %d is at position %d", id, res.Index)
			return nil
		},
	}
}

// listCommand creates the ls command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the tiles of a grid",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			tiles := ws.ctrl.Tiles()
			if len(tiles) == 0 {
				printInfo("Grid %s is empty", StyleHighlight.Render(c.gridName))
				printNextStep("Add a tile", "bento add")
				return nil
			}
			fmt.Println(tileTable(tiles))
			printGridStats(tiles, ws.found)
			return nil
		},
	}
}
