// Package validation checks contact fields before they reach storage.
package validation

import (
	"regexp"
	"strings"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
)

var (
	// A plus sign, a nonzero digit, then 11 to 14 further digits.
	phonePattern = regexp.MustCompile(`^\+[1-9]\d{11,14}$`)
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// Result is the outcome of validating a contact's fields.
type Result int

const (
	OK Result = iota
	Empty
	InvalidPhone
	InvalidEmail
)

var resultNames = map[Result]string{
	OK:           "ok",
	Empty:        "empty",
	InvalidPhone: "invalid_phone",
	InvalidEmail: "invalid_email",
}

// String returns a stable identifier for the result.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// Message returns the user-facing text for the result. OK has none.
func (r Result) Message() string {
	switch r {
	case Empty:
		return "All fields are required."
	case InvalidPhone:
		return "Invalid phone number. Please use E.164 format (e.g., +441234567890)."
	case InvalidEmail:
		return "Invalid email address. Please use example@gmail.com format."
	default:
		return ""
	}
}

// Err converts a failed result into a VALIDATION_ERROR.
func (r Result) Err() error {
	if r == OK {
		return nil
	}
	return apperrors.New(apperrors.ErrValidation, r.Message())
}

// IsValidPhone reports whether phone is an E.164-like number.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// IsValidEmail reports whether email matches the accepted address pattern.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// AreFieldsEmpty reports whether any field is blank after trimming.
func AreFieldsEmpty(first, last, location, phone, email string) bool {
	for _, v := range []string{first, last, location, phone, email} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// ValidateFields checks emptiness, then phone, then email, and returns the first failure.
func ValidateFields(first, last, location, phone, email string) Result {
	switch {
	case AreFieldsEmpty(first, last, location, phone, email):
		return Empty
	case !IsValidPhone(phone):
		return InvalidPhone
	case !IsValidEmail(email):
		return InvalidEmail
	default:
		return OK
	}
}

// ValidateContact validates the five fields of c.
func ValidateContact(c *models.Contact) Result {
	if c == nil {
		return Empty
	}
	return ValidateFields(c.FirstName, c.LastName, c.Location, c.Phone, c.Email)
}
