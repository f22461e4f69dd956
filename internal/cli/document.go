package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/codec"
	"github.com/matzehuels/bentogrid/pkg/controller"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output string
		legacy bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the grid document as JSON",
		Long: `Write the grid document as JSON to stdout or a file.

By default the versioned form {"schemaVersion": 1, "tiles": [...]} is written.
Use --legacy for the bare tile array.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := c.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			cdc := codec.Codec{Versioned: !legacy, Indent: true}
			if output == "" || output == "-" {
				return cdc.Write(os.Stdout, ws.ctrl.Tiles())
			}
			if err := cdc.WriteFile(output, ws.ctrl.Tiles()); err != nil {
				return err
			}
			printSuccess("Exported %d tile(s)", len(ws.ctrl.Tiles()))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "write the bare tile array")
	return cmd
}

// importCommand creates the import command.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the grid with a JSON document",
		Long: `Replace the grid with a JSON document. Both the versioned form and the
legacy bare array are accepted. An invalid document leaves the grid unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}

			res, err := c.mutate(cmd.Context(), controller.LoadDocument{Data: data})
			if err != nil {
				return err
			}
			printSuccess("Imported %d tile(s) into %s", len(res.Tiles), StyleHighlight.Render(c.gridName))
			return nil
		},
	}
}

// readInput reads a file, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
