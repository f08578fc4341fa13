package client

import (
	"context"
	"net/url"

	"github.com/bigdealegypt/bigdeal/internal/account"
	"github.com/bigdealegypt/bigdeal/internal/admin"
	"github.com/bigdealegypt/bigdeal/internal/property"
	"github.com/bigdealegypt/bigdeal/internal/propreq"
	"github.com/bigdealegypt/bigdeal/internal/viewing"
)

// SalesOpsDashboard returns the staff overview.
func (c *Client) SalesOpsDashboard(ctx context.Context) (*admin.SalesOpsDashboard, error) {
	var d admin.SalesOpsDashboard
	if err := c.get(ctx, "/sales-ops/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SalesOpsProperties returns the listings staff manage.
func (c *Client) SalesOpsProperties(ctx context.Context, opts PropertyListOptions) (*property.Page, error) {
	var page property.Page
	if err := c.get(ctx, "/sales-ops/properties"+opts.query(), &page); err != nil {
		return nil, err
	}
	if page.Page == 0 {
		page.Page = 1
	}
	return &page, nil
}

// SalesOpsPropertyRequests returns every customer's property requests.
func (c *Client) SalesOpsPropertyRequests(ctx context.Context, opts RequestListOptions) ([]*propreq.Request, error) {
	var reqs []*propreq.Request
	if err := c.get(ctx, "/sales-ops/property-requests"+opts.query(), &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// SalesOpsViewings returns every customer's scheduled viewings.
func (c *Client) SalesOpsViewings(ctx context.Context, opts viewing.ListOptions) ([]*viewing.ScheduledViewing, error) {
	var vs []*viewing.ScheduledViewing
	if err := c.get(ctx, "/sales-ops/scheduled-viewings"+encode(viewingQuery(opts)), &vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// AdminDashboard returns the admin overview.
func (c *Client) AdminDashboard(ctx context.Context) (*admin.Dashboard, error) {
	var d admin.Dashboard
	if err := c.get(ctx, "/admin/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// AdminUsers returns all user accounts.
func (c *Client) AdminUsers(ctx context.Context) ([]*account.User, error) {
	var users []*account.User
	if err := c.get(ctx, "/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes a user's role.
func (c *Client) UpdateUserRole(ctx context.Context, id string, role account.Role) (*account.User, error) {
	body := map[string]string{"role": string(role)}
	var u account.User
	if err := c.put(ctx, "/admin/users/"+url.PathEscape(id), body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// AdminFormFields returns the configurable property request form fields.
func (c *Client) AdminFormFields(ctx context.Context) ([]*admin.FormField, error) {
	var fields []*admin.FormField
	if err := c.getCached(ctx, "/admin/form-fields", &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// AdminSettings returns the full site settings.
func (c *Client) AdminSettings(ctx context.Context) (*admin.Settings, error) {
	var s admin.Settings
	if err := c.get(ctx, "/admin/settings", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateAdminSettings replaces the site settings.
func (c *Client) UpdateAdminSettings(ctx context.Context, s admin.Settings) (*admin.Settings, error) {
	var out admin.Settings
	if err := c.put(ctx, "/admin/settings", s, &out); err != nil {
		return nil, err
	}
	c.invalidate(ctx, "/settings")
	return &out, nil
}
