package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/smazurov/stripd/internal/config"
	"github.com/smazurov/stripd/internal/logging"
	"github.com/smazurov/stripd/internal/store"
	"github.com/spf13/cobra"
)

// storeOptions mirrors the store settings of the server so the snapshot
// commands see the same database as a running daemon.
type storeOptions struct {
	Config         string
	StoreDriver    string `toml:"store.driver" env:"STORE_DRIVER"`
	StorePath      string `toml:"store.path" env:"STORE_PATH"`
	StoreNamespace string `toml:"store.namespace" env:"STORE_NAMESPACE"`
}

// CreateSnapshotCmd creates the snapshot command with its show and reset
// subcommands.
func CreateSnapshotCmd() *cobra.Command {
	opts := &storeOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or reset the persisted light state",
	}
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "config.toml", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.StoreDriver, "store-driver", store.DriverSQLite, "Store engine (sqlite, toml, memory)")
	cmd.PersistentFlags().StringVar(&opts.StorePath, "store-path", "", "Store file path (default stripd.db for sqlite, state.toml for toml)")
	cmd.PersistentFlags().StringVar(&opts.StoreNamespace, "store-namespace", store.DefaultNamespace, "Store namespace")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the persisted colour and level",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withSnapshots(c, opts, func(s *store.Snapshots) error {
				return showSnapshot(c.OutOrStdout(), s)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Erase the persisted state so the next start uses the defaults",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return withSnapshots(c, opts, func(s *store.Snapshots) error {
				if err := s.Erase(); err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), "snapshot erased")
				return nil
			})
		},
	})

	return cmd
}

func withSnapshots(c *cobra.Command, opts *storeOptions, fn func(*store.Snapshots) error) error {
	if err := config.LoadConfig(opts, c); err != nil {
		return err
	}

	logging.Initialize(logging.Config{Level: "warn", Format: "text"})
	logger := logging.GetLogger("store")

	engine, err := store.NewEngine(opts.StoreDriver, opts.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			fmt.Fprintln(os.Stderr, "close store:", closeErr)
		}
	}()

	return fn(store.NewSnapshots(engine, opts.StoreNamespace, logger))
}

func showSnapshot(w io.Writer, s *store.Snapshots) error {
	cl, ok := s.Load()
	if !ok {
		_, err := fmt.Fprintln(w, "no snapshot stored, defaults apply on next start")
		return err
	}
	_, err := fmt.Fprintf(w, "color: W%d,%d,%d,%d\nlevel: L%d\n",
		cl.Color.R, cl.Color.G, cl.Color.B, cl.Color.W, cl.Level)
	return err
}
