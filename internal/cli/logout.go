package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove the stored session",
		Long:  "Revokes the session on the server and removes it from the local database. The local session is removed even if the server cannot be reached.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			return runLogout(cmd, c, cmd.OutOrStdout())
		},
	}
}

func runLogout(cmd *cobra.Command, c *conn, out io.Writer) error {
	if !c.sessions.SignedIn() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	c.sessions.SignOut(cmd.Context())
	fmt.Fprintln(out, "✓ Logged out.")
	return nil
}
