// Package services provides contact business logic on top of the stores.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kimhsiao/addressbook/internal/db"
	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/logging"
	"github.com/kimhsiao/addressbook/internal/models"
	"github.com/kimhsiao/addressbook/internal/validation"
)

// CopySuffix is appended to the first name of a duplicated contact.
const CopySuffix = " (Copy)"

// ContactManager is the contact API consumed by the HTTP handlers and the CLI.
type ContactManager interface {
	AddContact(ctx context.Context, candidate *models.Contact) (int64, error)
	AddContactWithExisting(ctx context.Context, candidate *models.Contact, existing []*models.Contact) (int64, error)
	UpdateContact(ctx context.Context, c *models.Contact) error
	DeleteContacts(ctx context.Context, ids []int64) DeleteSummary
	DuplicateContact(ctx context.Context, id int64) (*models.Contact, error)
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	ListContacts(ctx context.Context) ([]*models.Contact, error)
	Statistics(ctx context.Context) (*models.ContactStatistics, error)
	RecentlyModified(ctx context.Context, days int) ([]*models.Contact, error)
	CreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Contact, error)
	AgeAnalysis(ctx context.Context) (*models.AgeAnalysis, error)
}

// DeleteSummary reports the outcome of a batch delete.
type DeleteSummary struct {
	Requested int              `json:"requested"`
	Deleted   int              `json:"deleted"`
	Failed    int              `json:"failed"`
	Errors    map[int64]string `json:"errors,omitempty"`
}

// ContactService validates, de-duplicates and persists contacts.
type ContactService struct {
	store db.ContactRepository
	now   func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(store db.ContactRepository) *ContactService {
	return &ContactService{store: store, now: time.Now}
}

var _ ContactManager = (*ContactService)(nil)

// CreateFromFields builds an unsaved contact from trimmed field values.
func CreateFromFields(first, last, location, phone, email string) *models.Contact {
	c := &models.Contact{}
	c.SetFields(models.Fields{
		FirstName: first,
		LastName:  last,
		Location:  location,
		Phone:     phone,
		Email:     email,
	}.Trimmed())
	return c
}

// IsDuplicate reports whether any existing contact has the same trimmed fields.
// IDs and timestamps are ignored and comparison is case-sensitive.
func IsDuplicate(candidate *models.Contact, existing []*models.Contact) bool {
	if candidate == nil {
		return false
	}
	fields := candidate.Fields()
	for _, c := range existing {
		if c != nil && c.Fields().Equal(fields) {
			return true
		}
	}
	return false
}

// AddContact validates candidate, checks it against a fresh listing and stores it.
func (s *ContactService) AddContact(ctx context.Context, candidate *models.Contact) (int64, error) {
	if err := validation.ValidateContact(candidate).Err(); err != nil {
		return 0, err
	}
	existing, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return s.add(ctx, candidate, existing)
}

// AddContactWithExisting is AddContact against a caller-held snapshot.
func (s *ContactService) AddContactWithExisting(ctx context.Context, candidate *models.Contact, existing []*models.Contact) (int64, error) {
	if err := validation.ValidateContact(candidate).Err(); err != nil {
		return 0, err
	}
	return s.add(ctx, candidate, existing)
}

func (s *ContactService) add(ctx context.Context, candidate *models.Contact, existing []*models.Contact) (int64, error) {
	candidate.SetFields(candidate.Fields().Trimmed())
	if IsDuplicate(candidate, existing) {
		return 0, apperrors.New(apperrors.ErrDuplicate, "This contact already exists.")
	}

	id, err := s.store.Add(ctx, candidate)
	if err != nil {
		return 0, err
	}
	logging.Info("contact added", map[string]interface{}{"contact_id": id})
	return id, nil
}

// UpdateContact validates c and overwrites the stored contact with the same id.
func (s *ContactService) UpdateContact(ctx context.Context, c *models.Contact) error {
	if c == nil || c.ID <= 0 {
		return apperrors.New(apperrors.ErrInvalid, "contact id is required for update")
	}
	if err := validation.ValidateContact(c).Err(); err != nil {
		return err
	}
	c.SetFields(c.Fields().Trimmed())

	existing, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}
	others := make([]*models.Contact, 0, len(existing))
	for _, e := range existing {
		if e.ID != c.ID {
			others = append(others, e)
		}
	}
	if IsDuplicate(c, others) {
		return apperrors.New(apperrors.ErrDuplicate, "Another contact with the same details already exists.")
	}

	if err := s.store.Update(ctx, c); err != nil {
		return err
	}
	logging.Info("contact updated", map[string]interface{}{"contact_id": c.ID})
	return nil
}

// DeleteContacts deletes every id, continuing past failures.
func (s *ContactService) DeleteContacts(ctx context.Context, ids []int64) DeleteSummary {
	summary := DeleteSummary{Requested: len(ids)}
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			summary.Failed++
			if summary.Errors == nil {
				summary.Errors = make(map[int64]string)
			}
			summary.Errors[id] = err.Error()
			logging.Error("failed to delete contact", err, map[string]interface{}{"contact_id": id})
			continue
		}
		summary.Deleted++
	}
	logging.Info("contacts deleted", map[string]interface{}{
		"requested": summary.Requested,
		"deleted":   summary.Deleted,
		"failed":    summary.Failed,
	})
	return summary
}

// DuplicateContact stores a copy of the contact with id, marking the first name.
func (s *ContactService) DuplicateContact(ctx context.Context, id int64) (*models.Contact, error) {
	original, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := original.Fields()
	fields.FirstName = fmt.Sprintf("%s%s", fields.FirstName, CopySuffix)
	c := &models.Contact{}
	c.SetFields(fields)

	if _, err := s.AddContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetContact retrieves a contact by id.
func (s *ContactService) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	return s.store.Get(ctx, id)
}

// ListContacts returns every contact.
func (s *ContactService) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	return s.store.ListAll(ctx)
}

// Statistics returns the contact summary.
func (s *ContactService) Statistics(ctx context.Context) (*models.ContactStatistics, error) {
	return s.store.Statistics(ctx)
}

// RecentlyModified returns contacts updated in the last days.
func (s *ContactService) RecentlyModified(ctx context.Context, days int) ([]*models.Contact, error) {
	return s.store.ListRecentlyModified(ctx, days)
}

// CreatedBetween returns contacts created within [start, end].
func (s *ContactService) CreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Contact, error) {
	return s.store.ListByDateRange(ctx, start, end)
}

// AgeAnalysis summarizes contact ages as of now.
func (s *ContactService) AgeAnalysis(ctx context.Context) (*models.AgeAnalysis, error) {
	contacts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	analysis := AnalyzeAges(contacts, s.now())
	return &analysis, nil
}
