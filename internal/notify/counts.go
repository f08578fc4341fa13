// Package notify polls the backend for the notification badge counts.
package notify

import "context"

// Counts are the unread or pending items shown as sidebar badges.
type Counts struct {
	PropertyRequests  int `json:"propertyRequests"`
	ScheduledViewings int `json:"scheduledViewings"`
	SavedProperties   int `json:"savedProperties"`
	Messages          int `json:"messages"`
}

// Total returns the sum of all badges.
func (c Counts) Total() int {
	return c.PropertyRequests + c.ScheduledViewings + c.SavedProperties + c.Messages
}

// byKind returns the counts keyed by their metric label.
func (c Counts) byKind() map[string]int {
	return map[string]int{
		"property_requests":  c.PropertyRequests,
		"scheduled_viewings": c.ScheduledViewings,
		"saved_properties":   c.SavedProperties,
		"messages":           c.Messages,
	}
}

// CountsSource fetches the current counts. The API client implements it.
type CountsSource interface {
	NotificationCounts(ctx context.Context) (Counts, error)
}
