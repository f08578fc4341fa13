package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

func newViewingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewing",
		Short: "Request, schedule and manage a property viewing",
		Long: `Move a viewing through its scheduling steps.

Customers:
  bde viewing request P123 --notes "weekday mornings"
  bde viewing select V9 --date 2026-03-10 --time 10:00
  bde viewing cancel V9

Sales-ops staff:
  bde viewing propose V9 --date 2026-03-10 --date 2026-03-11 --time 10:00 --time 14:00
  bde viewing confirm V9
  bde viewing complete V9`,
	}

	cmd.AddCommand(
		newViewingRequestCmd(),
		newViewingSelectCmd(),
		newViewingCancelCmd(),
		newViewingProposeCmd(),
		newViewingConfirmCmd(),
		newViewingCompleteCmd(),
		newViewingShowCmd(),
	)
	return cmd
}

func newViewingRequestCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "request <property-id>",
		Short: "Request a viewing of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			tr := viewing.NewTracker(c.api, args[0], c.history)
			tr.Load(cmd.Context())
			v, err := tr.Request(cmd.Context(), notes)
			if err != nil {
				return err
			}
			return printViewingResult(cmd.OutOrStdout(), "Viewing requested.", v)
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "optional notes for the sales team")
	return cmd
}

func newViewingSelectCmd() *cobra.Command {
	var date, tm, notes string

	cmd := &cobra.Command{
		Use:   "select <viewing-id>",
		Short: "Choose one of the proposed slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			tr, err := trackViewing(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}

			form := viewing.NewSelectSlotForm(tr.Viewing())
			if date != "" {
				if err := form.ChooseDate(date); err != nil {
					return fmt.Errorf("%w (proposed: %v)", err, form.Dates)
				}
			}
			if tm != "" {
				if err := form.ChooseTime(tm); err != nil {
					return fmt.Errorf("%w (proposed: %v)", err, form.Times)
				}
			}
			form.Notes = notes

			v, err := tr.SelectSlot(cmd.Context(), form)
			if err != nil {
				return err
			}
			return printViewingResult(cmd.OutOrStdout(), "Slot selected. Waiting for confirmation.", v)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "proposed date to choose (YYYY-MM-DD); optional when only one was proposed")
	cmd.Flags().StringVar(&tm, "time", "", "proposed time to choose (HH:MM); optional when only one was proposed")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "optional notes")
	return cmd
}

func newViewingCancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <viewing-id>",
		Short: "Cancel a viewing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			tr, err := trackViewing(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			v, err := tr.Cancel(cmd.Context(), reason)
			if err != nil {
				return err
			}
			return printViewingResult(cmd.OutOrStdout(), "Viewing cancelled.", v)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "optional cancellation reason")
	return cmd
}

func newViewingProposeCmd() *cobra.Command {
	var dates, times []string
	var privateNotes string

	cmd := &cobra.Command{
		Use:   "propose <viewing-id>",
		Short: "Propose candidate dates and times (sales-ops)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := &viewing.ProposeSlotsForm{Dates: dates, Times: times, PrivateNotes: privateNotes}
			req, err := form.Request()
			if err != nil {
				return fmt.Errorf("invalid slots: %w", err)
			}

			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			v, err := c.api.GetViewing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			from := v.CurrentStatus()
			if !slices.Contains(viewing.StaffActions(from), viewing.StaffPropose) {
				return fmt.Errorf("proposing slots for a %s viewing: %w", from, viewing.ErrActionNotAvailable)
			}

			if settings, err := c.api.GetSettings(cmd.Context()); err != nil {
				slog.Debug("loading site settings", "error", err)
			} else if settings.MaxProposedSlots > 0 {
				form.MaxSlots = settings.MaxProposedSlots
				if req, err = form.Request(); err != nil {
					return fmt.Errorf("invalid slots: %w", err)
				}
			}

			updated, err := c.api.ProposeSlots(cmd.Context(), v.ID, req)
			if err != nil {
				return err
			}
			c.record(from, updated)
			return printViewingResult(cmd.OutOrStdout(), "Slots proposed.", updated)
		},
	}

	cmd.Flags().StringArrayVar(&dates, "date", nil, "candidate date (YYYY-MM-DD), repeatable")
	cmd.Flags().StringArrayVar(&times, "time", nil, "candidate time (HH:MM), repeatable")
	cmd.Flags().StringVar(&privateNotes, "private-notes", "", "notes visible to staff only")
	return cmd
}

func newViewingConfirmCmd() *cobra.Command {
	var req viewing.ConfirmRequest

	cmd := &cobra.Command{
		Use:   "confirm <viewing-id>",
		Short: "Confirm the customer's selected slot (sales-ops)",
		Long:  "Confirm a viewing. Without --date and --time the customer's selected slot is used.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStaffAction(cmd, args[0], viewing.StaffConfirm, func(ctx context.Context, c *conn, id string) (*viewing.ScheduledViewing, error) {
				return c.api.ConfirmViewing(ctx, id, req)
			})
		},
	}

	cmd.Flags().StringVar(&req.ViewingDate, "date", "", "override the viewing date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.ViewingTime, "time", "", "override the viewing time (HH:MM)")
	cmd.Flags().StringVar(&req.PrivateNotes, "private-notes", "", "notes visible to staff only")
	return cmd
}

func newViewingCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <viewing-id>",
		Short: "Mark a confirmed viewing as completed (sales-ops)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStaffAction(cmd, args[0], viewing.StaffComplete, func(ctx context.Context, c *conn, id string) (*viewing.ScheduledViewing, error) {
				return c.api.CompleteViewing(ctx, id)
			})
		},
	}
}

func newViewingShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <viewing-id>",
		Short: "Show a viewing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connectSignedIn(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			v, err := c.api.GetViewing(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), v)
			}
			printViewing(cmd.OutOrStdout(), v)

			ts, err := c.history.ListByViewing(v.ID)
			if err != nil {
				slog.Warn("reading viewing history", "viewing_id", v.ID, "error", err)
				return nil
			}
			if len(ts) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nLocal history:")
				printHistory(cmd.OutOrStdout(), ts)
			}
			return nil
		},
	}
}

type staffCall func(ctx context.Context, c *conn, id string) (*viewing.ScheduledViewing, error)

// runStaffAction checks the action is open for the viewing's status before calling the API.
func runStaffAction(cmd *cobra.Command, id string, action viewing.StaffAction, call staffCall) error {
	c, err := connectSignedIn(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := c.api.GetViewing(cmd.Context(), id)
	if err != nil {
		return err
	}
	from := v.CurrentStatus()
	if !staffActionOpen(from, action) {
		return fmt.Errorf("%s on a %s viewing: %w", action, from, viewing.ErrActionNotAvailable)
	}

	updated, err := call(cmd.Context(), c, v.ID)
	if err != nil {
		return err
	}
	c.record(from, updated)
	return printViewingResult(cmd.OutOrStdout(), "Viewing updated: "+action.Label()+".", updated)
}

func staffActionOpen(from viewing.Status, action viewing.StaffAction) bool {
	for _, a := range viewing.StaffActions(from) {
		if a == action {
			return true
		}
	}
	return false
}

// trackViewing fetches a viewing and returns a tracker positioned on it.
func trackViewing(ctx context.Context, c *conn, id string) (*viewing.Tracker, error) {
	v, err := c.api.GetViewing(ctx, id)
	if err != nil {
		return nil, err
	}
	tr := viewing.NewTracker(c.api, v.PropertyID, c.history)
	tr.Set(v)
	return tr, nil
}

// record logs a transition issued outside a tracker.
func (c *conn) record(from viewing.Status, v *viewing.ScheduledViewing) {
	if v == nil {
		return
	}
	if err := c.history.Record(from, v); err != nil {
		slog.Warn("recording viewing history", "viewing_id", v.ID, "error", err)
	}
}

func printViewingResult(out io.Writer, msg string, v *viewing.ScheduledViewing) error {
	if isJSON() {
		return printJSON(out, v)
	}
	fmt.Fprintf(out, "✓ %s\n\n", msg)
	if v != nil {
		printViewing(out, v)
	}
	return nil
}
