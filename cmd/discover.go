package cmd

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/smazurov/stripd/internal/discovery"
	"github.com/smazurov/stripd/internal/logging"
	"github.com/spf13/cobra"
)

// CreateDiscoverCmd creates the discover command, which lists stripd
// instances advertising themselves over mDNS.
func CreateDiscoverCmd() *cobra.Command {
	var timeout time.Duration
	var verbose bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Find LED strips on the local network",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Initialize(logging.Config{Level: level, Format: "text"})

			ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			strips, err := discovery.Browse(ctx, timeout, logging.GetLogger("discovery"))
			if err != nil && ctx.Err() == nil {
				return err
			}
			if len(strips) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "no strips found")
				return nil
			}

			sort.Slice(strips, func(i, j int) bool { return strips[i].Name < strips[j].Name })
			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tURL\tVERSION")
			for _, s := range strips {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.URL(), s.TXT["version"])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 3*time.Second, "How long to wait for answers")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every mDNS answer")
	return cmd
}
