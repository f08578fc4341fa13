package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/notify"
)

func newNotificationsCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show notification counts",
		Long: `Show the badge counts for property requests, scheduled viewings, saved properties and messages.

With --watch, keeps polling on the configured interval (poll_interval, default 2m) and prints
the counts whenever they change, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()

			if !watch {
				counts, err := c.api.NotificationCounts(cmd.Context())
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(out, counts)
				}
				printCounts(out, counts)
				return nil
			}

			p := notify.NewPoller(c.api, notify.Config{
				Interval: c.cfg.PollInterval,
				Jitter:   c.cfg.PollJitter,
			}, nil)
			p.OnUpdate(func(counts notify.Counts) {
				if isJSON() {
					_ = printJSON(out, counts)
					return
				}
				fmt.Fprintf(out, "[%s] %d new\n", time.Now().Format("15:04:05"), counts.Total())
				printCounts(out, counts)
				fmt.Fprintln(out)
			})
			p.Start(cmd.Context())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep polling until interrupted")
	return cmd
}
