package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

func newPropertiesCmd() *cobra.Command {
	var opts client.PropertyListOptions

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "List properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			page, err := c.api.ListProperties(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), page)
			}
			return printPropertyTable(cmd.OutOrStdout(), page)
		},
	}

	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "properties per page (default: server's)")
	cmd.Flags().StringVar(&opts.City, "city", "", "filter by city")
	cmd.Flags().StringVar(&opts.PropertyType, "type", "", "filter by property type")
	cmd.Flags().StringVar(&opts.ListingType, "listing", "", "filter by listing type (sale|rent)")
	cmd.Flags().BoolVar(&opts.Featured, "featured", false, "only featured properties")

	return cmd
}

type propertyDetail struct {
	Property *property.Property        `json:"property"`
	Viewing  *viewing.ScheduledViewing `json:"viewing,omitempty"`
	Action   viewing.Action            `json:"action"`
}

func newPropertyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "property <id>",
		Short: "Show property details and its viewing action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			p, err := c.api.GetProperty(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tr := viewing.NewTracker(c.api, p.ID, c.history)
			tr.Load(cmd.Context())

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, propertyDetail{Property: p, Viewing: tr.Viewing(), Action: tr.Action()})
			}

			printPropertySummary(out, p)
			fmt.Fprintln(out)
			if tr.Degraded() {
				fmt.Fprintln(out, "  (viewing status could not be loaded)")
			}
			fmt.Fprintf(out, "  Viewing:   %s\n", tr.Status().Label())
			fmt.Fprintf(out, "  Action:    %s\n", actionHint(tr.Action(), p.ID))
			return nil
		},
	}
}

// actionHint describes the primary action with the command that performs it.
func actionHint(a viewing.Action, propertyID string) string {
	switch a.Kind {
	case viewing.ActionRequest, viewing.ActionRequestAnother:
		return fmt.Sprintf("%s (bde viewing request %s)", a.Label, propertyID)
	case viewing.ActionSelectSlot:
		return fmt.Sprintf("%s (bde viewing select %s --date ... --time ...)", a.Label, a.ViewingID)
	}
	return a.Label
}
