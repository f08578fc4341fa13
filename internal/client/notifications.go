package client

import (
	"context"

	"github.com/bigdealegypt/bigdeal/internal/notify"
)

// NotificationCounts returns the caller's badge counts.
func (c *Client) NotificationCounts(ctx context.Context) (notify.Counts, error) {
	var counts notify.Counts
	if err := c.get(ctx, "/notifications/counts", &counts); err != nil {
		return notify.Counts{}, err
	}
	return counts, nil
}
