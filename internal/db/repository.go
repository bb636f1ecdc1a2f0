// Package db provides CRUD repository operations for contacts.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/logging"
	"github.com/kimhsiao/addressbook/internal/models"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

const contactColumns = `id, firstName, lastName, location, phone, email, createdAt, updatedAt`

// ContactStore persists contacts through a Connector.
// Each call acquires the handle; no transaction spans calls.
type ContactStore struct {
	conns Connector
	now   func() time.Time
}

// StoreOption configures a ContactStore.
type StoreOption func(*ContactStore)

// WithClock sets the clock used for createdAt, updatedAt and look-back cutoffs.
func WithClock(now func() time.Time) StoreOption {
	return func(s *ContactStore) {
		s.now = now
	}
}

// NewContactStore creates a new ContactStore instance.
func NewContactStore(conns Connector, opts ...StoreOption) *ContactStore {
	s := &ContactStore{conns: conns, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =====================================================
// Contact Operations
// =====================================================

// Add inserts c and sets its ID and timestamps. It returns the new id.
func (s *ContactStore) Add(ctx context.Context, c *models.Contact) (int64, error) {
	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	now := toMillis(s.now())
	query := `
	INSERT INTO Contacts (firstName, lastName, location, phone, email, contentHash, createdAt, updatedAt)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.ExecContext(ctx, query, c.FirstName, c.LastName, c.Location, c.Phone, c.Email,
		c.Fields().Hash(), now, now)
	if err != nil {
		return 0, persistenceError("failed to add contact", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "failed to read inserted contact id", err)
	}

	c.ID = id
	c.CreatedAt = fromMillis(sql.NullInt64{Int64: now, Valid: true})
	c.UpdatedAt = fromMillis(sql.NullInt64{Int64: now, Valid: true})
	return id, nil
}

// Update overwrites the five fields of the contact with c.ID and refreshes updatedAt.
// A missing row is not an error.
func (s *ContactStore) Update(ctx context.Context, c *models.Contact) error {
	if c.ID <= 0 {
		return apperrors.New(apperrors.ErrInvalid, "contact id is required for update")
	}

	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return err
	}

	now := toMillis(s.now())
	query := `
	UPDATE Contacts
	SET firstName = ?, lastName = ?, location = ?, phone = ?, email = ?, contentHash = ?, updatedAt = ?
	WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query, c.FirstName, c.LastName, c.Location, c.Phone, c.Email,
		c.Fields().Hash(), now, c.ID)
	if err != nil {
		return persistenceError("failed to update contact", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logging.Warn("update matched no contact", map[string]interface{}{"contact_id": c.ID})
		return nil
	}

	c.UpdatedAt = fromMillis(sql.NullInt64{Int64: now, Valid: true})
	return nil
}

// Delete removes the contact with id. Deleting a missing id is not an error.
func (s *ContactStore) Delete(ctx context.Context, id int64) error {
	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM Contacts WHERE id = ?", id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to delete contact", err)
	}
	return nil
}

// Get retrieves a contact by ID.
func (s *ContactStore) Get(ctx context.Context, id int64) (*models.Contact, error) {
	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+contactColumns+" FROM Contacts WHERE id = ?", id)
	c, err := scanContact(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.ErrNotFound, fmt.Sprintf("contact %d not found", id))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to get contact", err)
	}
	return c, nil
}

// ListAll returns every contact in id order.
func (s *ContactStore) ListAll(ctx context.Context) ([]*models.Contact, error) {
	return s.list(ctx, "SELECT "+contactColumns+" FROM Contacts ORDER BY id")
}

// ListByDateRange returns contacts created within [start, end], newest first.
func (s *ContactStore) ListByDateRange(ctx context.Context, start, end time.Time) ([]*models.Contact, error) {
	if end.Before(start) {
		return nil, apperrors.New(apperrors.ErrInvalid, "date range end is before start")
	}
	query := "SELECT " + contactColumns + ` FROM Contacts
	WHERE createdAt >= ? AND createdAt <= ?
	ORDER BY createdAt DESC, id DESC`
	return s.list(ctx, query, toMillis(start), toMillis(end))
}

// ListRecentlyModified returns contacts updated within the last days, most recent first.
func (s *ContactStore) ListRecentlyModified(ctx context.Context, days int) ([]*models.Contact, error) {
	if days < 0 {
		return nil, apperrors.New(apperrors.ErrInvalid, "days must not be negative")
	}
	cutoff := s.now().AddDate(0, 0, -days)
	query := "SELECT " + contactColumns + ` FROM Contacts
	WHERE updatedAt >= ?
	ORDER BY updatedAt DESC, id DESC`
	return s.list(ctx, query, toMillis(cutoff))
}

// Statistics computes the summary in a single aggregate query.
func (s *ContactStore) Statistics(ctx context.Context) (*models.ContactStatistics, error) {
	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	weekAgo := toMillis(s.now().Add(-models.RecentWindow))
	query := `
	SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN createdAt >= ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN updatedAt >= ? THEN 1 ELSE 0 END), 0),
		MIN(createdAt),
		MAX(createdAt)
	FROM Contacts
	`
	var (
		stats           models.ContactStatistics
		oldest, newest  sql.NullInt64
		created, edited int64
	)
	err = db.QueryRowContext(ctx, query, weekAgo, weekAgo).Scan(
		&stats.TotalContacts, &created, &edited, &oldest, &newest,
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to compute contact statistics", err)
	}
	stats.CreatedThisWeek = int(created)
	stats.ModifiedThisWeek = int(edited)
	stats.OldestContact = fromMillis(oldest)
	stats.NewestContact = fromMillis(newest)
	return &stats, nil
}

func (s *ContactStore) list(ctx context.Context, query string, args ...interface{}) ([]*models.Contact, error) {
	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list contacts", err)
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to scan contact", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "failed to list contacts", err)
	}
	return contacts, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		c                models.Contact
		created, updated sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Location, &c.Phone, &c.Email, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(created)
	c.UpdatedAt = fromMillis(updated)
	return &c, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

// persistenceError maps unique violations to DUPLICATE and everything else to DATABASE_ERROR.
func persistenceError(message string, err error) error {
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.ErrDuplicate, "contact already exists", err)
	}
	return apperrors.Wrap(apperrors.ErrDatabase, message, err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}
