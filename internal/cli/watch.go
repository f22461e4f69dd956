package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/controller"
	bentoerr "github.com/matzehuels/bentogrid/pkg/errors"
	"github.com/matzehuels/bentogrid/pkg/render/svg"
)

// watchDebounce is the quiet period after the last change before a reload.
// Editors often write a file in several steps.
const watchDebounce = 100 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var svgPath string

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Load a grid document whenever it changes",
		Long: `Watch imports a grid document into the current grid and imports it again on
every change. A document that fails to decode is reported and the grid keeps
its last valid state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.open(ctx, nil)
			if err != nil {
				return err
			}
			defer ws.Close()

			return c.runWatch(ctx, ws, args[0], svgPath)
		},
	}

	cmd.Flags().StringVar(&svgPath, "svg", "", "also render the grid to this SVG file after each load")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, ws *workspace, path, svgPath string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// Watch the directory so renames by editors are seen.
	w, err := newDocWatcher(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()

	reload := func() {
		if err := c.reloadDocument(ctx, ws, path, svgPath); err != nil {
			printError("%s", bentoerr.UserMessage(err))
			return
		}
		printSuccess("Loaded %s (%d tiles)", filepath.Base(path), len(ws.ctrl.Tiles()))
	}

	reload()
	printDetail("Watching %s, press Ctrl+C to stop", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			reload()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watcher", "err", err)
		}
	}
}

// reloadDocument imports the file at path and saves the grid.
func (c *CLI) reloadDocument(ctx context.Context, ws *workspace, path, svgPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := ws.ctrl.Dispatch(ctx, controller.LoadDocument{Data: data})
	if err != nil {
		return err
	}
	c.warnSync(res)
	if err := ws.save(ctx); err != nil {
		return err
	}
	if svgPath == "" {
		return nil
	}
	els := ws.ctrl.Adapter().Elements()
	return os.WriteFile(svgPath, svg.Render(els, bounds(ws.ctrl.Engine(), els), svg.WithLabels()), 0o644)
}

// =============================================================================
// docWatcher - Debounced file watcher
// =============================================================================

// docWatcher reports changes to a single file.
type docWatcher struct {
	watcher *fsnotify.Watcher
	path    string

	Events chan string
	Errors chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newDocWatcher(path string) (*docWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &docWatcher{
		watcher: fw,
		path:    filepath.Clean(path),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Events and Errors are closed once it returns.
func (w *docWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *docWatcher) run() {
	defer close(w.done)
	defer close(w.Errors)
	defer close(w.Events)

	// The timer restarts on every event, so a burst yields one
	// notification after the last write.
	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			timer.Reset(watchDebounce)
		case <-timer.C:
			select {
			case w.Events <- w.path:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
