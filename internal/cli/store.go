package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bentogrid/pkg/kv"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and manage the grid store",
	}

	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved document of the grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			key, err := kv.GridKey(cfg.Keyer(), c.gridName)
			if err != nil {
				return err
			}
			store, err := kv.Open(ctx, cfg.Store.Options)
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
			}
			defer store.Close()

			_, ok, err := store.Get(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				printInfo("Grid %s has no saved document", StyleHighlight.Render(c.gridName))
				return nil
			}
			if err := store.Delete(ctx, key); err != nil {
				return err
			}

			printSuccess("Cleared grid %s", StyleHighlight.Render(c.gridName))
			printDetail("Key: %s", key)
			return nil
		},
	}
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the grid document is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			key, err := kv.GridKey(cfg.Keyer(), c.gridName)
			if err != nil {
				return err
			}

			printKeyValue("backend", cfg.Store.Backend)
			printKeyValue("key", key)
			switch cfg.Store.Backend {
			case kv.BackendFile, "":
				fs, err := kv.NewFileStore(cfg.Store.Dir)
				if err != nil {
					return err
				}
				printKeyValue("file", fs.Path(key))
			case kv.BackendRedis:
				printKeyValue("redis", cfg.Store.Redis.Addr)
			case kv.BackendMongo:
				printKeyValue("mongo", fmt.Sprintf("%s/%s", cfg.Store.Mongo.Database, cfg.Store.Mongo.Collection))
			}
			return nil
		},
	}
}
