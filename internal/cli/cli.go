// Package cli implements the bento command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/buildinfo"
	"github.com/matzehuels/bentogrid/pkg/config"
	"github.com/matzehuels/bentogrid/pkg/controller"
	bentoerr "github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/kv"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	gridName   string
	backend    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		gridName: kv.DefaultGrid,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "bento",
		Short:        "Bento builds editable tile grids",
		Long:         `Bento is a CLI tool for building bento grids: tiles sized in grid units, carrying an image or a link, packed into a grid and saved as a JSON document.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml or .yml; default $XDG_CONFIG_HOME/bento/config.toml)")
	root.PersistentFlags().StringVarP(&c.gridName, "grid", "g", c.gridName, "grid name")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "store backend: file, memory, redis, mongo (overrides config)")

	// Register all subcommands
	root.AddCommand(c.addCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.imageCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Workspace
// =============================================================================

// workspace is one opened grid: its config, store and controller.
type workspace struct {
	cfg   config.Config
	store kv.Store
	ctrl  *controller.Controller
	key   string
	found bool // a saved document existed when the grid was opened
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
		if err := cfg.Resolve(); err != nil {
			return cfg, err
		}
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// open loads the configured grid. A grid that was never saved opens empty.
func (c *CLI) open(ctx context.Context, renderer controller.Renderer) (*workspace, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	key, err := kv.GridKey(cfg.Keyer(), c.gridName)
	if err != nil {
		return nil, err
	}

	store, err := kv.Open(ctx, cfg.Store.Options)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	ctrl, err := controller.New(controller.Options{
		Store:     store,
		Key:       key,
		Codec:     cfg.Codec(),
		Converter: cfg.Converter(),
		Columns:   cfg.Grid.Columns,
		Renderer:  renderer,
		Logger:    c.Logger,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	ws := &workspace{cfg: cfg, store: store, ctrl: ctrl, key: key}
	res, err := ctrl.Dispatch(ctx, controller.Load{})
	switch {
	case err == nil:
		ws.found = true
		c.warnSync(res)
	case bentoerr.Is(err, bentoerr.ErrCodeNotFound):
		c.Logger.Debug("starting new grid", "key", key)
	default:
		store.Close()
		return nil, fmt.Errorf("load grid %s: %w", c.gridName, err)
	}
	return ws, nil
}

// Close releases the store.
func (w *workspace) Close() error {
	return w.store.Close()
}

func (w *workspace) save(ctx context.Context) error {
	_, err := w.ctrl.Dispatch(ctx, controller.Save{})
	return err
}

// mutate opens the grid, applies intent and saves the result.
func (c *CLI) mutate(ctx context.Context, intent controller.Intent) (controller.Result, error) {
	ws, err := c.open(ctx, nil)
	if err != nil {
		return controller.Result{}, err
	}
	defer ws.Close()

	res, err := ws.ctrl.Dispatch(ctx, intent)
	if err != nil {
		return res, err
	}
	c.warnSync(res)
	if err := ws.save(ctx); err != nil {
		return res, fmt.Errorf("save grid: %w", err)
	}
	return res, nil
}

// warnSync reports a non-fatal layout sync failure.
func (c *CLI) warnSync(res controller.Result) {
	if res.SyncErr != nil {
		c.Logger.Warn("layout out of date", "err", res.SyncErr)
	}
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseID parses a tile id argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, bentoerr.New(bentoerr.ErrCodeInvalidInput, "invalid tile id %q", s)
	}
	return id, nil
}
