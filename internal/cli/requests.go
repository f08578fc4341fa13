package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/client"
	"github.com/bigdealegypt/bigdeal/internal/propreq"
)

func newRequestsCmd() *cobra.Command {
	var status string
	var page int

	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List property requests",
		Long:  "List your property requests. Sales-ops staff and admins see every customer's requests.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := propreq.Status(status)
			if status != "" && !st.IsValid() {
				return fmt.Errorf("unknown status %q", status)
			}

			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			opts := client.RequestListOptions{Status: st, Page: page}
			var reqs []*propreq.Request
			if c.sessions.User().IsStaff() {
				reqs, err = c.api.SalesOpsPropertyRequests(cmd.Context(), opts)
			} else {
				reqs, err = c.api.ListPropertyRequests(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), reqs)
			}
			return printRequestTable(cmd.OutOrStdout(), reqs)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	return cmd
}

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Create and manage a property request",
	}
	cmd.AddCommand(
		newRequestCreateCmd(),
		newRequestUpdateCmd(),
		newRequestShowCmd(),
		newRequestDeleteCmd(),
	)
	return cmd
}

// requestFlags binds the property request form to command flags.
type requestFlags struct {
	propertyID   string
	propertyType string
	location     string
	minBudget    int64
	maxBudget    int64
	bedrooms     int64
	notes        string
	fields       []string
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.propertyID, "property", "", "related property ID")
	cmd.Flags().StringVar(&f.propertyType, "type", "", "property type (apartment, villa, ...)")
	cmd.Flags().StringVar(&f.location, "location", "", "preferred location")
	cmd.Flags().Int64Var(&f.minBudget, "min-budget", 0, "minimum budget in EGP")
	cmd.Flags().Int64Var(&f.maxBudget, "max-budget", 0, "maximum budget in EGP")
	cmd.Flags().Int64Var(&f.bedrooms, "bedrooms", 0, "number of bedrooms")
	cmd.Flags().StringVarP(&f.notes, "notes", "n", "", "additional notes")
	cmd.Flags().StringArrayVar(&f.fields, "field", nil, "custom field as name=value, repeatable")
}

// input builds the request body. Only flags that were set are included.
func (f *requestFlags) input(cmd *cobra.Command) (propreq.Input, error) {
	in := propreq.Input{
		PropertyID:   strings.TrimSpace(f.propertyID),
		PropertyType: strings.TrimSpace(f.propertyType),
		Location:     strings.TrimSpace(f.location),
		Notes:        strings.TrimSpace(f.notes),
	}
	if cmd.Flags().Changed("min-budget") {
		in.MinBudget = &f.minBudget
	}
	if cmd.Flags().Changed("max-budget") {
		in.MaxBudget = &f.maxBudget
	}
	if cmd.Flags().Changed("bedrooms") {
		in.Bedrooms = &f.bedrooms
	}
	for _, kv := range f.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return propreq.Input{}, fmt.Errorf("invalid --field %q (want name=value)", kv)
		}
		if in.Fields == nil {
			in.Fields = make(map[string]string)
		}
		in.Fields[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return in, in.Validate()
}

func newRequestCreateCmd() *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a property request",
		Long: `Submit a property request to the sales team.

Example:
  bde request create --type apartment --location "New Cairo" --max-budget 5000000 --bedrooms 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}

			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			r, err := c.api.CreatePropertyRequest(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printRequestResult(cmd.OutOrStdout(), "Property request submitted.", r)
		},
	}

	f.bind(cmd)
	return cmd
}

func newRequestUpdateCmd() *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the details of a property request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}

			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			r, err := c.api.UpdatePropertyRequest(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			return printRequestResult(cmd.OutOrStdout(), "Property request updated.", r)
		},
	}

	f.bind(cmd)
	return cmd
}

func newRequestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a property request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			r, err := c.api.GetPropertyRequest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), r)
			}
			printRequest(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func newRequestDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a property request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.api.DeletePropertyRequest(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Property request %s deleted.\n", args[0])
			return nil
		},
	}
}

func printRequestResult(out io.Writer, msg string, r *propreq.Request) error {
	if isJSON() {
		return printJSON(out, r)
	}
	fmt.Fprintf(out, "✓ %s\n\n", msg)
	printRequest(out, r)
	return nil
}
