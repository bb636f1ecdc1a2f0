package services

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
)

// SortField selects the contact field used by Sort.
type SortField string

const (
	SortByFirstName SortField = "first_name"
	SortByLastName  SortField = "last_name"
	SortByLocation  SortField = "location"
	SortByPhone     SortField = "phone"
	SortByEmail     SortField = "email"
)

// FilterKind selects the predicate used by Filter.
type FilterKind string

const (
	FilterByLocation    FilterKind = "location"
	FilterByEmailDomain FilterKind = "email_domain"
	FilterByPhonePrefix FilterKind = "phone_prefix"
)

// ParseSortField validates a sort field name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByFirstName, SortByLastName, SortByLocation, SortByPhone, SortByEmail:
		return f, nil
	default:
		return "", apperrors.New(apperrors.ErrInvalid, "unknown sort field: "+s)
	}
}

// ParseFilterKind validates a filter kind name.
func ParseFilterKind(s string) (FilterKind, error) {
	switch k := FilterKind(strings.ToLower(strings.TrimSpace(s))); k {
	case FilterByLocation, FilterByEmailDomain, FilterByPhonePrefix:
		return k, nil
	default:
		return "", apperrors.New(apperrors.ErrInvalid, "unknown filter: "+s)
	}
}

// fold returns the case-folded form of s for caseless comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}

// Search returns contacts whose name, location or email contains term
// case-insensitively, or whose phone contains term exactly.
// A blank term matches everything.
func Search(contacts []*models.Contact, term string) []*models.Contact {
	term = strings.TrimSpace(term)
	if term == "" {
		return slices.Clone(contacts)
	}
	results := make([]*models.Contact, 0)
	for _, c := range contacts {
		if containsFold(c.FirstName, term) ||
			containsFold(c.LastName, term) ||
			containsFold(c.Email, term) ||
			strings.Contains(c.Phone, term) ||
			containsFold(c.Location, term) {
			results = append(results, c)
		}
	}
	return results
}

// Sort returns a sorted copy of contacts. Phone compares exactly, other fields caselessly.
// The sort is stable.
func Sort(contacts []*models.Contact, field SortField) []*models.Contact {
	sorted := slices.Clone(contacts)
	var key func(*models.Contact) string
	switch field {
	case SortByFirstName:
		key = func(c *models.Contact) string { return fold(c.FirstName) }
	case SortByLastName:
		key = func(c *models.Contact) string { return fold(c.LastName) }
	case SortByLocation:
		key = func(c *models.Contact) string { return fold(c.Location) }
	case SortByPhone:
		key = func(c *models.Contact) string { return c.Phone }
	case SortByEmail:
		key = func(c *models.Contact) string { return fold(c.Email) }
	default:
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b *models.Contact) int {
		return strings.Compare(key(a), key(b))
	})
	return sorted
}

// Filter returns the contacts matching value under kind. A blank value matches everything.
func Filter(contacts []*models.Contact, kind FilterKind, value string) []*models.Contact {
	value = strings.TrimSpace(value)
	if value == "" {
		return slices.Clone(contacts)
	}
	var match func(*models.Contact) bool
	switch kind {
	case FilterByLocation:
		match = func(c *models.Contact) bool { return containsFold(c.Location, value) }
	case FilterByEmailDomain:
		match = func(c *models.Contact) bool { return containsFold(c.Email, value) }
	case FilterByPhonePrefix:
		match = func(c *models.Contact) bool { return strings.HasPrefix(c.Phone, value) }
	default:
		return slices.Clone(contacts)
	}

	results := make([]*models.Contact, 0)
	for _, c := range contacts {
		if match(c) {
			results = append(results, c)
		}
	}
	return results
}
