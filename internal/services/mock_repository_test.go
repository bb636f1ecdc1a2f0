package services

import (
	"context"
	"sync"
	"time"

	"github.com/kimhsiao/addressbook/internal/db"
	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
)

// mockContactRepository is an in-memory ContactRepository with error injection.
type mockContactRepository struct {
	mu       sync.Mutex
	contacts map[int64]*models.Contact
	nextID   int64

	listErr    error
	addErr     error
	updateErr  error
	deleteErrs map[int64]error

	addCalls    int
	updateCalls int
	listCalls   int
}

func newMockContactRepository() *mockContactRepository {
	return &mockContactRepository{
		contacts:   make(map[int64]*models.Contact),
		deleteErrs: make(map[int64]error),
	}
}

var _ db.ContactRepository = (*mockContactRepository)(nil)

func (m *mockContactRepository) Add(_ context.Context, c *models.Contact) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return 0, m.addErr
	}
	m.nextID++
	now := time.Now()
	c.ID = m.nextID
	c.CreatedAt, c.UpdatedAt = &now, &now
	stored := *c
	m.contacts[c.ID] = &stored
	return c.ID, nil
}

func (m *mockContactRepository) Update(_ context.Context, c *models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	if existing, ok := m.contacts[c.ID]; ok {
		existing.SetFields(c.Fields())
	}
	return nil
}

func (m *mockContactRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErrs[id]; err != nil {
		return err
	}
	delete(m.contacts, id)
	return nil
}

func (m *mockContactRepository) Get(_ context.Context, id int64) (*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contacts[id]
	if !ok {
		return nil, apperrors.New(apperrors.ErrNotFound, "contact not found")
	}
	copied := *c
	return &copied, nil
}

func (m *mockContactRepository) ListAll(context.Context) ([]*models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.Contact, 0, len(m.contacts))
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.contacts[id]; ok {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockContactRepository) ListByDateRange(context.Context, time.Time, time.Time) ([]*models.Contact, error) {
	return nil, nil
}

func (m *mockContactRepository) ListRecentlyModified(context.Context, int) ([]*models.Contact, error) {
	return nil, nil
}

func (m *mockContactRepository) Statistics(context.Context) (*models.ContactStatistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.ContactStatistics{TotalContacts: len(m.contacts)}, nil
}
