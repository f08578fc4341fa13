package cli

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/notify"
	"github.com/bigdealegypt/bigdeal/internal/session"
	"github.com/bigdealegypt/bigdeal/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		addr      string
		port      int
		retention time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long: `Start a local web UI backed by the configured server.

The UI shares the CLI's stored session, so by default it listens on the loopback
interface only. Use --addr to bind elsewhere. It polls notification counts in the
background and exposes Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := connect(ctx, session.OnSignedOut(func(err error) {
				slog.Warn("session ended; sign in again at /login", "error", err)
			}))
			if err != nil {
				return err
			}
			defer c.Close()

			if retention > 0 {
				n, err := c.history.Prune(time.Now().Add(-retention))
				if err != nil {
					slog.Warn("pruning viewing history", "error", err)
				} else if n > 0 {
					slog.Info("pruned viewing history", "removed", n)
				}
			}

			poller := notify.NewPoller(c.api, notify.Config{
				Interval: c.cfg.PollInterval,
				Jitter:   c.cfg.PollJitter,
			}, notify.NewMetrics(nil))

			srv, err := web.NewServer(web.Options{
				API:      c.api,
				Sessions: c.sessions,
				Poller:   poller,
				History:  c.history,
			})
			if err != nil {
				return err
			}

			go poller.Start(ctx)
			defer poller.Stop()

			listen := listenAddr(addr, port)
			fmt.Fprintf(cmd.OutOrStdout(), "Web UI on http://%s (backend %s)\n", listen, c.api.BaseURL())
			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "host:port to listen on (overrides --port)")
	cmd.Flags().IntVar(&port, "port", 8080, "loopback port to listen on")
	cmd.Flags().DurationVar(&retention, "history-retention", 90*24*time.Hour, "drop local viewing history older than this (0 keeps everything)")

	return cmd
}

// listenAddr returns addr when set, otherwise port on the loopback interface.
func listenAddr(addr string, port int) string {
	if addr != "" {
		return addr
	}
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
}
