package models

import (
	"fmt"
	"strings"
	"time"
)

// User is the local projection of an account: enough to own jobs and carry the
// premium flag the sync engine consults. Identity linking lives elsewhere.
type User struct {
	id          string
	sequence    int
	email       string
	displayName string
	premium     bool
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewUser creates a user with the given email and display name.
func NewUser(sequence int, email, displayName string) *User {
	now := time.Now()
	return &User{
		sequence:    sequence,
		email:       email,
		displayName: displayName,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) Sequence() int        { return u.sequence }
func (u *User) Email() string        { return u.email }
func (u *User) DisplayName() string  { return u.displayName }
func (u *User) Premium() bool        { return u.premium }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)          { u.id = id }
func (u *User) SetPremium(p bool)        { u.premium = p }
func (u *User) SetDisplayName(n string)  { u.displayName = n }
func (u *User) SetUpdatedAt(t time.Time) { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time) { u.deletedAt = t }

// Validate checks that the email looks like an email and a display name is present.
func (u *User) Validate() error {
	if u.email == "" || !strings.Contains(u.email, "@") {
		return fmt.Errorf("valid email is required")
	}
	if u.displayName == "" {
		return fmt.Errorf("display name is required")
	}
	return nil
}
