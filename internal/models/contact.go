// Package models provides data model definitions for the address book.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DisplayLayout is the layout used for human-readable timestamps.
const DisplayLayout = "Jan 02, 2006 15:04"

// RecentWindow is the look-back used for "modified this week".
const RecentWindow = 7 * 24 * time.Hour

// Contact represents one address book entry.
type Contact struct {
	ID        int64      `db:"id" json:"id"`
	FirstName string     `db:"firstName" json:"first_name"`
	LastName  string     `db:"lastName" json:"last_name"`
	Location  string     `db:"location" json:"location"`
	Phone     string     `db:"phone" json:"phone"`
	Email     string     `db:"email" json:"email"`
	CreatedAt *time.Time `db:"createdAt" json:"created_at,omitempty"`
	UpdatedAt *time.Time `db:"updatedAt" json:"updated_at,omitempty"`
}

// Fields returns the five user-editable fields.
func (c *Contact) Fields() Fields {
	return Fields{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Location:  c.Location,
		Phone:     c.Phone,
		Email:     c.Email,
	}
}

// SetFields replaces the five user-editable fields.
func (c *Contact) SetFields(f Fields) {
	c.FirstName = f.FirstName
	c.LastName = f.LastName
	c.Location = f.Location
	c.Phone = f.Phone
	c.Email = f.Email
}

// FullName joins first and last name.
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// AgeInDays returns whole days elapsed since creation, or 0 when unknown.
func (c *Contact) AgeInDays(now time.Time) int {
	if c.CreatedAt == nil {
		return 0
	}
	return int(now.Sub(*c.CreatedAt) / (24 * time.Hour))
}

// IsRecentlyModified reports whether the contact changed in the last 7 days.
// The boundary instant counts as recent.
func (c *Contact) IsRecentlyModified(now time.Time) bool {
	if c.UpdatedAt == nil {
		return false
	}
	return !c.UpdatedAt.Before(now.Add(-RecentWindow))
}

// CreatedAtDisplay formats CreatedAt for display.
func (c *Contact) CreatedAtDisplay() string {
	return formatDisplay(c.CreatedAt)
}

// UpdatedAtDisplay formats UpdatedAt for display.
func (c *Contact) UpdatedAtDisplay() string {
	return formatDisplay(c.UpdatedAt)
}

func formatDisplay(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Local().Format(DisplayLayout)
}

// Fields is the identity tuple of a contact.
type Fields struct {
	FirstName string
	LastName  string
	Location  string
	Phone     string
	Email     string
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f Fields) Trimmed() Fields {
	return Fields{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Location:  strings.TrimSpace(f.Location),
		Phone:     strings.TrimSpace(f.Phone),
		Email:     strings.TrimSpace(f.Email),
	}
}

// Equal compares the trimmed tuples. Comparison is case-sensitive.
func (f Fields) Equal(other Fields) bool {
	return f.Trimmed() == other.Trimmed()
}

// Hash returns the hex SHA-256 of the trimmed tuple.
// Fields are separated by a unit separator so that ("ab","c") and ("a","bc") differ.
func (f Fields) Hash() string {
	t := f.Trimmed()
	joined := strings.Join([]string{t.FirstName, t.LastName, t.Location, t.Phone, t.Email}, "\x1f")
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}
