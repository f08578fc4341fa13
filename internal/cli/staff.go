package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/admin"
	"github.com/bigdealegypt/bigdeal/internal/client"
)

var errStaffOnly = errors.New("this command is for sales-ops staff and admins")

func newSalesOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "salesops",
		Aliases: []string{"sales-ops"},
		Short:   "Sales-ops dashboard",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dashboard",
		Short: "Show the sales-ops overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if !c.sessions.User().IsStaff() {
				return errStaffOnly
			}

			d, err := c.api.SalesOpsDashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, d)
			}
			fmt.Fprintf(out, "Pending requests:       %d\n", d.PendingRequests)
			fmt.Fprintf(out, "Assigned to me:         %d\n", d.AssignedRequests)
			fmt.Fprintf(out, "Awaiting slots:         %d\n", d.AwaitingSlots)
			fmt.Fprintf(out, "Awaiting confirmation:  %d\n", d.AwaitingConfirm)
			fmt.Fprintf(out, "Viewings today:         %d\n", d.ViewingsToday)
			fmt.Fprintf(out, "Managed properties:     %d\n", d.ManagedProperties)
			printTally(out, "Viewings by status", d.ViewingsByStatus)
			return nil
		},
	})

	cmd.AddCommand(newSalesOpsPropertiesCmd())

	return cmd
}

func newSalesOpsPropertiesCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "List the listings sales-ops manage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if !c.sessions.User().IsStaff() {
				return errStaffOnly
			}

			p, err := c.api.SalesOpsProperties(cmd.Context(), client.PropertyListOptions{Page: page, PageSize: pageSize})
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printPropertyTable(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "properties per page")
	return cmd
}

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboard, users and site settings",
	}
	cmd.AddCommand(
		newAdminDashboardCmd(),
		newAdminUsersCmd(),
		newAdminSetRoleCmd(),
		newAdminFormFieldsCmd(),
		newAdminSettingsCmd(),
	)
	return cmd
}

// connectAdmin connects and rejects anyone but admins before any API call.
func connectAdmin(cmd *cobra.Command) (*conn, error) {
	c, err := connectSignedIn(cmd.Context())
	if err != nil {
		return nil, err
	}
	if !c.sessions.User().IsAdmin() {
		c.Close()
		return nil, fmt.Errorf("this command is for admins")
	}
	return c, nil
}

func newAdminDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectAdmin(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			d, err := c.api.AdminDashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, d)
			}
			fmt.Fprintf(out, "Users:              %d (%d recent signups)\n", d.TotalUsers, d.RecentSignups)
			fmt.Fprintf(out, "Properties:         %d (%d active)\n", d.TotalProperties, d.ActiveListings)
			fmt.Fprintf(out, "Open requests:      %d\n", d.OpenPropertyRequests)
			fmt.Fprintf(out, "Upcoming viewings:  %d\n", d.UpcomingViewings)
			printTally(out, "Users by role", d.UsersByRole)
			printTally(out, "Viewings by status", d.ViewingsByStatus)
			return nil
		},
	}
}

func newAdminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectAdmin(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			users, err := c.api.AdminUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, users)
			}
			if len(users) == 0 {
				fmt.Fprintln(out, "No users found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, truncate(u.DisplayName(), 30), u.Email, u.Role.Label())
			}
			return tw.Flush()
		},
	}
}

func newAdminSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <user-id> <role>",
		Short: "Change a user's role (customer|sales_ops|admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := account.Role(strings.ToLower(args[1]))
			if !role.IsValid() {
				return fmt.Errorf("unknown role %q", args[1])
			}

			c, err := connectAdmin(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			u, err := c.api.UpdateUserRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), u)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s.\n", u.DisplayName(), u.Role.Label())
			return nil
		},
	}
}

func newAdminFormFieldsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "form-fields",
		Short: "List the property request form fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectAdmin(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			fields, err := c.api.AdminFormFields(cmd.Context())
			if err != nil {
				return err
			}
			if !all {
				fields = admin.ActiveFields(fields)
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, fields)
			}
			if len(fields) == 0 {
				fmt.Fprintln(out, "No form fields configured.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tNAME\tLABEL\tTYPE\tREQUIRED\tACTIVE")
			for _, f := range fields {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%t\n", f.Order, f.Name, f.Label, f.Type, f.Required, f.Active)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include inactive fields")
	return cmd
}

func newAdminSettingsCmd() *cobra.Command {
	var set []string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change site settings",
		Long: `Show the site settings, or change them with --set.

Example:
  bde admin settings --set site_name=BigDealEgypt --set allow_signups=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectAdmin(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			s, err := c.api.AdminSettings(cmd.Context())
			if err != nil {
				return err
			}

			if len(set) > 0 {
				for _, kv := range set {
					if err := applySetting(s, kv); err != nil {
						return err
					}
				}
				if s, err = c.api.UpdateAdminSettings(cmd.Context(), *s); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, s)
			}
			printSettings(out, s)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "setting as key=value, repeatable")
	return cmd
}

// applySetting changes one setting from a key=value pair.
func applySetting(s *admin.Settings, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("invalid --set %q (want key=value)", kv)
	}
	value = strings.TrimSpace(value)

	switch strings.TrimSpace(key) {
	case "site_name":
		if value == "" {
			return fmt.Errorf("site_name cannot be empty")
		}
		s.SiteName = value
	case "contact_email":
		s.ContactEmail = value
	case "contact_phone":
		s.ContactPhone = value
	case "whatsapp_number":
		s.WhatsAppNumber = value
	case "currency":
		s.Currency = value
	case "maintenance_mode":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("maintenance_mode: %w", err)
		}
		s.MaintenanceMode = b
	case "allow_signups":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("allow_signups: %w", err)
		}
		s.AllowSignups = b
	case "max_proposed_slots":
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n < 1 {
			return fmt.Errorf("max_proposed_slots must be a positive number")
		}
		s.MaxProposedSlots = n
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

func printSettings(out io.Writer, s *admin.Settings) {
	fmt.Fprintf(out, "Site name:           %s\n", s.SiteName)
	fmt.Fprintf(out, "Contact email:       %s\n", s.ContactEmail)
	fmt.Fprintf(out, "Contact phone:       %s\n", s.ContactPhone)
	fmt.Fprintf(out, "WhatsApp:            %s\n", s.WhatsAppNumber)
	fmt.Fprintf(out, "Currency:            %s\n", s.Currency)
	fmt.Fprintf(out, "Allow signups:       %t\n", s.AllowSignups)
	fmt.Fprintf(out, "Maintenance mode:    %t\n", s.MaintenanceMode)
	fmt.Fprintf(out, "Max proposed slots:  %d\n", s.MaxProposedSlots)
}

// printTally prints a count map sorted by key.
func printTally(out io.Writer, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(out, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-16s %d\n", k, m[k])
	}
}
