package model

import (
	"errors"
	"time"
)

// User is an account that can sign in. Owners and tenants are both users.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Email        string     `json:"email,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin  = "admin"
	RoleOwner  = "owner"
	RoleTenant = "tenant"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var roleLevels = map[string]int{
	RoleAdmin:  3,
	RoleOwner:  2,
	RoleTenant: 1,
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles never satisfy the check.
func RoleAtLeast(role, minimum string) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	want, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return have >= want
}

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
