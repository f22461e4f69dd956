package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for bento.

  bash:       source <(bento completion bash)
  zsh:        bento completion zsh > "${fpath[1]}/_bento"
  fish:       bento completion fish > ~/.config/fish/completions/bento.fish
  powershell: bento completion powershell | Out-String | Invoke-Expression

Tile ids and directions complete from the current grid.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeTileIDs offers the ids of the current grid for the first argument.
func (c *CLI) completeTileIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeEveryTileID(cmd, args, toComplete)
}

// completeEveryTileID offers the ids of the current grid for any argument.
func (c *CLI) completeEveryTileID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	ws, err := c.open(cmd.Context(), nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer ws.Close()

	var ids []string
	for _, t := range ws.ctrl.Tiles() {
		ids = append(ids, strconv.Itoa(t.ID))
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeResize completes a tile id, then a direction.
func (c *CLI) completeResize(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 1 {
		return []string{"up", "down", "left", "right"}, cobra.ShellCompDirectiveNoFileComp
	}
	return c.completeTileIDs(cmd, args, toComplete)
}
