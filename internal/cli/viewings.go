package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

func newViewingsCmd() *cobra.Command {
	var (
		status     string
		propertyID string
		page       int
		history    bool
		latest     bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "viewings",
		Short: "List your viewings",
		Long: `List scheduled viewings. Sales-ops staff and admins see every customer's viewings.

With --history, shows the transitions this machine has issued instead, read from the local database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if history {
				database, err := openDB()
				if err != nil {
					return err
				}
				defer closeDB(database)

				h := viewing.NewHistory(database)
				if latest {
					last, err := h.LastByProperty()
					if err != nil {
						return err
					}
					if isJSON() {
						return printJSON(out, last)
					}
					printHistory(out, sortedTransitions(last))
					return nil
				}

				ts, err := h.Recent(limit)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(out, ts)
				}
				printHistory(out, ts)
				return nil
			}

			st := viewing.Status(status)
			if status != "" && !st.IsValid() {
				return fmt.Errorf("unknown status %q", status)
			}

			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			opts := viewing.ListOptions{PropertyID: propertyID, Status: st, Page: page}
			var vs []*viewing.ScheduledViewing
			if c.sessions.User().IsStaff() {
				vs, err = c.api.SalesOpsViewings(cmd.Context(), opts)
			} else {
				vs, err = c.api.ListViewings(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(out, vs)
			}
			return printViewingTable(out, vs)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (requested|options_sent|slot_selected|confirmed|completed|cancelled)")
	cmd.Flags().StringVar(&propertyID, "property", "", "filter by property ID")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().BoolVar(&history, "history", false, "show locally recorded transitions")
	cmd.Flags().BoolVar(&latest, "latest", false, "with --history, show only the last transition per property")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum history entries")

	return cmd
}

// sortedTransitions orders a per-property map by property ID.
func sortedTransitions(m map[string]*viewing.Transition) []*viewing.Transition {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ts := make([]*viewing.Transition, 0, len(ids))
	for _, id := range ids {
		ts = append(ts, m[id])
	}
	return ts
}
