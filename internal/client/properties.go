package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bigdealegypt/bigdeal/internal/admin"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/propreq"
)

// PropertyListOptions controls filtering for ListProperties.
type PropertyListOptions struct {
	Page         int
	PageSize     int
	City         string
	PropertyType string
	ListingType  string // sale or rent (empty = all)
	Featured     bool
}

func (o PropertyListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.City != "" {
		q.Set("city", o.City)
	}
	if o.PropertyType != "" {
		q.Set("property_type", o.PropertyType)
	}
	if o.ListingType != "" {
		q.Set("listing_type", o.ListingType)
	}
	if o.Featured {
		q.Set("featured", "true")
	}
	return encode(q)
}

// GetSettings returns the public site settings.
func (c *Client) GetSettings(ctx context.Context) (*admin.Settings, error) {
	var s admin.Settings
	if err := c.getCached(ctx, "/settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListProperties returns one page of listings.
func (c *Client) ListProperties(ctx context.Context, opts PropertyListOptions) (*property.Page, error) {
	var page property.Page
	if err := c.get(ctx, "/properties"+opts.query(), &page); err != nil {
		return nil, err
	}
	if page.Page == 0 {
		page.Page = 1
	}
	return &page, nil
}

// GetProperty returns a single listing.
func (c *Client) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	var p property.Property
	if err := c.getCached(ctx, "/properties/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RequestListOptions controls filtering for property request listings.
type RequestListOptions struct {
	Status propreq.Status // empty = all
	Page   int
}

func (o RequestListOptions) query() string {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", string(o.Status))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	return encode(q)
}

// ListPropertyRequests returns the caller's property requests.
func (c *Client) ListPropertyRequests(ctx context.Context, opts RequestListOptions) ([]*propreq.Request, error) {
	var reqs []*propreq.Request
	if err := c.get(ctx, "/property-requests"+opts.query(), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// GetPropertyRequest returns a single property request.
func (c *Client) GetPropertyRequest(ctx context.Context, id string) (*propreq.Request, error) {
	var r propreq.Request
	if err := c.get(ctx, "/property-requests/"+url.PathEscape(id), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreatePropertyRequest submits a new property request.
func (c *Client) CreatePropertyRequest(ctx context.Context, in propreq.Input) (*propreq.Request, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var r propreq.Request
	if err := c.post(ctx, "/property-requests", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdatePropertyRequest replaces the editable fields of a property request.
func (c *Client) UpdatePropertyRequest(ctx context.Context, id string, in propreq.Input) (*propreq.Request, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var r propreq.Request
	if err := c.put(ctx, "/property-requests/"+url.PathEscape(id), in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeletePropertyRequest removes a property request.
func (c *Client) DeletePropertyRequest(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("property request id is required")
	}
	return c.doDelete(ctx, "/property-requests/"+url.PathEscape(id))
}

func encode(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
