// Package models defines the user records and properties persisted by the
// repositories.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/password"
)

// User is a user account. Password holds the hashed form only.
type User struct {
	ID       string    `db:"id"`
	Name     string    `db:"name" validate:"max=255"`
	Email    string    `db:"email" validate:"required,email,max=255"`
	Username string    `db:"username" validate:"required,max=64"`
	Password string    `db:"password"`
	Created  time.Time `db:"created"`
	Admin    string    `db:"admin"`

	Properties PropertyList `db:"-"`

	// PasswordDefinition, when set, overrides the service-wide policy for
	// this record. It is never persisted.
	PasswordDefinition *password.Definition `db:"-" validate:"-"`
}

var adminTruthy = map[string]struct{}{
	"yes":  {},
	"y":    {},
	"true": {},
	"t":    {},
	"1":    {},
}

// IsAdmin reports whether the admin flag holds a truthy value
// ("yes", "y", "true", "t", "1" in any case).
func (u *User) IsAdmin() bool {
	_, ok := adminTruthy[strings.ToLower(strings.TrimSpace(u.Admin))]
	return ok
}

// SetAdmin stores the flag in its canonical form.
func (u *User) SetAdmin(admin bool) {
	if admin {
		u.Admin = "yes"
		return
	}
	u.Admin = "no"
}

// Normalize lowercases the login fields.
func (u *User) Normalize() {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
}

// Clone returns a deep copy, so callers can hand records across layers
// without sharing the property slice.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Properties = u.Properties.Clone()
	return &c
}
