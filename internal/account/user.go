// Package account provides the marketplace user model and roles.
package account

import "time"

// Role gates which dashboards and actions a user can reach.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSalesOps Role = "sales_ops"
	RoleAdmin    Role = "admin"
)

// ValidRoles is the set of roles the backend issues.
var ValidRoles = []Role{RoleCustomer, RoleSalesOps, RoleAdmin}

// IsValid checks if a role is recognized.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the role.
func (r Role) Label() string {
	switch r {
	case RoleCustomer:
		return "Customer"
	case RoleSalesOps:
		return "Sales Ops"
	case RoleAdmin:
		return "Admin"
	default:
		return string(r)
	}
}

// User is the signed-in account as returned by the auth endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsStaff reports whether the user may use sales-ops screens.
// Admins inherit staff access.
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == RoleSalesOps || u.Role == RoleAdmin)
}

// IsAdmin reports whether the user may use admin screens.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DisplayName returns the full name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
