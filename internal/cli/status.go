package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

type statusOutput struct {
	Server    string     `json:"server"`
	Site      string     `json:"site,omitempty"`
	SignedIn  bool       `json:"signed_in"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check connection and session status",
		Long:  "Shows the backend URL, the signed-in user and when the session expires.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			state := c.sessions.State()
			st := statusOutput{Server: c.api.BaseURL(), SignedIn: state.User != nil}
			if state.User != nil {
				st.Email = state.User.Email
				st.Role = string(state.User.Role)
			}
			if state.Session != nil && !state.Session.ExpiresAt.IsZero() {
				exp := state.Session.ExpiresAt
				st.ExpiresAt = &exp
			}
			if state.Err != nil {
				st.Error = state.Err.Error()
			}
			if settings, err := c.api.GetSettings(cmd.Context()); err != nil {
				slog.Debug("fetching site settings", "error", err)
			} else {
				st.Site = settings.SiteName
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, st)
			}

			fmt.Fprintf(out, "Server:  %s\n", st.Server)
			if st.Site != "" {
				fmt.Fprintf(out, "Site:    %s\n", st.Site)
			}
			if !st.SignedIn {
				if st.Error != "" {
					fmt.Fprintf(out, "Status:  ✗ session invalid (%s)\n", st.Error)
				} else {
					fmt.Fprintln(out, "Status:  not logged in")
				}
				fmt.Fprintln(out, "\nRun 'bde login' to authenticate.")
				return nil
			}

			fmt.Fprintf(out, "User:    %s (%s)\n", st.Email, state.User.Role.Label())
			if st.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires: %s (in %s)\n",
					st.ExpiresAt.Local().Format("2006-01-02 15:04"),
					time.Until(*st.ExpiresAt).Round(time.Minute))
			} else {
				fmt.Fprintln(out, "Expires: unknown")
			}
			fmt.Fprintln(out, "Status:  ✓ connected and authenticated")
			return nil
		},
	}
}
