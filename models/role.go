// Package models contains domain entities and business models for the sales administration system
package models

import "fmt"

// Role is the closed set of account roles. Persisted as a text column so the
// set of valid values is owned by this type, not by the database.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleSeller Role = "seller"
	RoleBox    Role = "box"
)

// ParseRole converts a raw string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleStaff, RoleSeller, RoleBox:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// DashboardPath maps a role to its dashboard destination. Pure function over
// the closed role set; staff members land on the admin dashboard.
func DashboardPath(r Role) string {
	switch r {
	case RoleAdmin, RoleStaff:
		return "/dashboard/admin"
	case RoleSeller:
		return "/dashboard/seller"
	case RoleBox:
		return "/dashboard/box"
	default:
		return "/login"
	}
}
