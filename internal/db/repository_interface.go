// Package db provides repository interfaces for address book data models.
package db

import (
	"context"
	"time"

	"github.com/kimhsiao/addressbook/internal/models"
)

// ContactRepository defines operations for contact persistence.
type ContactRepository interface {
	// Add inserts a contact and returns its new id.
	Add(ctx context.Context, c *models.Contact) (int64, error)

	// Update overwrites an existing contact's fields.
	Update(ctx context.Context, c *models.Contact) error

	// Delete removes a contact by id.
	Delete(ctx context.Context, id int64) error

	// Get retrieves a contact by id.
	Get(ctx context.Context, id int64) (*models.Contact, error)

	// ListAll returns every contact.
	ListAll(ctx context.Context) ([]*models.Contact, error)

	// ListByDateRange returns contacts created within an inclusive range.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*models.Contact, error)

	// ListRecentlyModified returns contacts updated in the last days.
	ListRecentlyModified(ctx context.Context, days int) ([]*models.Contact, error)

	// Statistics summarizes the stored contacts.
	Statistics(ctx context.Context) (*models.ContactStatistics, error)
}

// SettingsRepository defines operations for UI preference persistence.
type SettingsRepository interface {
	GetTheme(ctx context.Context, username string) (string, error)
	SaveTheme(ctx context.Context, username, theme string) error
}

// Ensure implementations satisfy the interfaces at compile time.
var (
	_ ContactRepository  = (*ContactStore)(nil)
	_ SettingsRepository = (*SettingsStore)(nil)
	_ Connector          = (*Provider)(nil)
)
