package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bigdealegypt/bigdeal/internal/notify"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/propreq"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single property in text format.
func printPropertySummary(w io.Writer, p *property.Property) {
	fmt.Fprintf(w, "Property %s\n", p.ID)
	fmt.Fprintf(w, "  Title:     %s\n", p.Title)
	location := p.Location
	if p.City != "" {
		location += ", " + p.City
	}
	fmt.Fprintf(w, "  Location:  %s\n", location)
	fmt.Fprintf(w, "  Price:     %s\n", property.FormatPrice(p.Price))
	fmt.Fprintf(w, "  Beds:      %s\n", property.FormatCount(p.Bedrooms))
	fmt.Fprintf(w, "  Baths:     %s\n", property.FormatCount(p.Bathrooms))
	fmt.Fprintf(w, "  Area:      %s\n", property.FormatArea(p.Area))
	if p.PropertyType != "" {
		fmt.Fprintf(w, "  Type:      %s\n", p.PropertyType)
	}
	if p.ListingType != "" {
		fmt.Fprintf(w, "  Listing:   %s\n", p.ListingType)
	}
	if p.Status != "" {
		fmt.Fprintf(w, "  Status:    %s\n", p.Status)
	}
}

// printPropertyTable prints a page of properties as a formatted table.
func printPropertyTable(w io.Writer, page *property.Page) error {
	if len(page.Properties) == 0 {
		fmt.Fprintln(w, "No properties found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTITLE\tCITY\tPRICE\tBED\tAREA"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t-----\t----\t-----\t---\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range page.Properties {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Title, 40), p.City, property.FormatPrice(p.Price),
			property.FormatCount(p.Bedrooms), property.FormatArea(p.Area)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nPage %d of %d (%d properties)\n", page.Page, page.TotalPages(), page.Total)
	return nil
}

// printViewing prints one viewing in text format.
func printViewing(w io.Writer, v *viewing.ScheduledViewing) {
	fmt.Fprintf(w, "Viewing %s\n", v.ID)
	fmt.Fprintf(w, "  Property:  %s\n", v.PropertyID)
	fmt.Fprintf(w, "  Status:    %s\n", v.CurrentStatus().Label())
	if len(v.ProposedDates) > 0 {
		fmt.Fprintf(w, "  Dates:     %v\n", v.ProposedDates)
		fmt.Fprintf(w, "  Times:     %v\n", v.ProposedTimes)
	}
	if v.SelectedDate != "" {
		fmt.Fprintf(w, "  Selected:  %s %s\n", v.SelectedDate, v.SelectedTime)
	}
	if s := v.Schedule(); s != "" {
		fmt.Fprintf(w, "  Scheduled: %s\n", s)
	}
	if v.Notes != "" {
		fmt.Fprintf(w, "  Notes:     %s\n", v.Notes)
	}
	if v.PrivateNotes != "" {
		fmt.Fprintf(w, "  Private:   %s\n", v.PrivateNotes)
	}
}

// printViewingTable prints viewings as a formatted table.
func printViewingTable(w io.Writer, vs []*viewing.ScheduledViewing) error {
	if len(vs) == 0 {
		fmt.Fprintln(w, "No viewings found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tPROPERTY\tSTATUS\tSCHEDULE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, v := range vs {
		schedule := v.Schedule()
		if schedule == "" {
			schedule = "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.PropertyID, v.CurrentStatus().Label(), schedule); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// printHistory prints locally recorded viewing transitions.
func printHistory(w io.Writer, ts []*viewing.Transition) {
	if len(ts) == 0 {
		fmt.Fprintln(w, "No viewing history recorded.")
		return
	}
	for _, t := range ts {
		fmt.Fprintf(w, "[%s] %s (property %s): %s -> %s",
			t.CreatedAt.Local().Format("2006-01-02 15:04"), t.ViewingID, t.PropertyID,
			t.FromStatus.Label(), t.ToStatus.Label())
		if t.ViewingDate != "" {
			fmt.Fprintf(w, " on %s", t.ViewingDate)
		}
		fmt.Fprintln(w)
	}
}

// printRequestTable prints property requests as a formatted table.
func printRequestTable(w io.Writer, reqs []*propreq.Request) error {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "No property requests.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tTYPE\tLOCATION\tBUDGET\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, r := range reqs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.PropertyType, truncate(r.Location, 30), budget(r.MinBudget, r.MaxBudget), r.Status.Label()); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// printRequest prints one property request in text format.
func printRequest(w io.Writer, r *propreq.Request) {
	fmt.Fprintf(w, "Request %s\n", r.ID)
	fmt.Fprintf(w, "  Type:      %s\n", r.PropertyType)
	fmt.Fprintf(w, "  Location:  %s\n", r.Location)
	fmt.Fprintf(w, "  Budget:    %s\n", budget(r.MinBudget, r.MaxBudget))
	fmt.Fprintf(w, "  Bedrooms:  %s\n", property.FormatCount(r.Bedrooms))
	fmt.Fprintf(w, "  Status:    %s\n", r.Status.Label())
	if r.Notes != "" {
		fmt.Fprintf(w, "  Notes:     %s\n", r.Notes)
	}
}

// printCounts prints notification badge counts.
func printCounts(w io.Writer, c notify.Counts) {
	fmt.Fprintf(w, "Property requests:  %d\n", c.PropertyRequests)
	fmt.Fprintf(w, "Scheduled viewings: %d\n", c.ScheduledViewings)
	fmt.Fprintf(w, "Saved properties:   %d\n", c.SavedProperties)
	fmt.Fprintf(w, "Messages:           %d\n", c.Messages)
}

func budget(lo, hi *int64) string {
	switch {
	case lo == nil && hi == nil:
		return "-"
	case lo == nil:
		return "up to " + property.FormatPrice(hi)
	case hi == nil:
		return "from " + property.FormatPrice(lo)
	}
	return property.FormatPrice(lo) + " - " + property.FormatPrice(hi)
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
