package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

func viewingQuery(opts viewing.ListOptions) url.Values {
	q := url.Values{}
	if opts.PropertyID != "" {
		q.Set("property_id", opts.PropertyID)
	}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	return q
}

func viewingPath(id, action string) string {
	p := "/scheduled-viewings/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// ListViewings returns the caller's scheduled viewings.
func (c *Client) ListViewings(ctx context.Context, opts viewing.ListOptions) ([]*viewing.ScheduledViewing, error) {
	var vs []*viewing.ScheduledViewing
	if err := c.get(ctx, "/scheduled-viewings"+encode(viewingQuery(opts)), &vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// GetViewing returns a single scheduled viewing.
func (c *Client) GetViewing(ctx context.Context, id string) (*viewing.ScheduledViewing, error) {
	var v viewing.ScheduledViewing
	if err := c.get(ctx, viewingPath(id, ""), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// LatestViewing returns the caller's most recent viewing for a property,
// or nil when none exists.
func (c *Client) LatestViewing(ctx context.Context, propertyID string) (*viewing.ScheduledViewing, error) {
	q := viewingQuery(viewing.ListOptions{PropertyID: propertyID})
	q.Set("latest", "true")

	var vs []*viewing.ScheduledViewing
	if err := c.get(ctx, "/scheduled-viewings"+encode(q), &vs); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return vs[0], nil
}

// RequestViewing asks for a viewing of a property.
func (c *Client) RequestViewing(ctx context.Context, req viewing.CreateRequest) (*viewing.ScheduledViewing, error) {
	var v viewing.ScheduledViewing
	if err := c.post(ctx, "/scheduled-viewings", req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ProposeSlots sends candidate dates and times to the customer. Staff only.
func (c *Client) ProposeSlots(ctx context.Context, id string, req viewing.ProposeSlotsRequest) (*viewing.ScheduledViewing, error) {
	return c.viewingAction(ctx, id, "propose-slots", req)
}

// SelectSlot submits the customer's chosen date and time.
func (c *Client) SelectSlot(ctx context.Context, id string, req viewing.SelectSlotRequest) (*viewing.ScheduledViewing, error) {
	return c.viewingAction(ctx, id, "select-slot", req)
}

// ConfirmViewing finalizes the viewing schedule. Staff only.
func (c *Client) ConfirmViewing(ctx context.Context, id string, req viewing.ConfirmRequest) (*viewing.ScheduledViewing, error) {
	return c.viewingAction(ctx, id, "confirm", req)
}

// CompleteViewing marks a confirmed viewing as having taken place. Staff only.
func (c *Client) CompleteViewing(ctx context.Context, id string) (*viewing.ScheduledViewing, error) {
	return c.viewingAction(ctx, id, "complete", struct{}{})
}

// CancelViewing withdraws a viewing with an optional reason.
func (c *Client) CancelViewing(ctx context.Context, id, reason string) (*viewing.ScheduledViewing, error) {
	return c.viewingAction(ctx, id, "cancel", viewing.CancelRequest{Reason: reason})
}

func (c *Client) viewingAction(ctx context.Context, id, action string, body interface{}) (*viewing.ScheduledViewing, error) {
	var v viewing.ScheduledViewing
	if err := c.post(ctx, viewingPath(id, action), body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
