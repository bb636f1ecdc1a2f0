package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/kimhsiao/addressbook/internal/config"
	"github.com/kimhsiao/addressbook/internal/models"
)

// testClock is a settable store clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var baseTime = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// setupTestProvider creates a provider over a migrated in-memory SQLite database.
func setupTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(config.DatabaseConfig{URL: "sqlite::memory:", Password: "unused"})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// setupTestStore creates a ContactStore with a controllable clock.
func setupTestStore(t *testing.T) (*ContactStore, *testClock) {
	t.Helper()
	clock := &testClock{now: baseTime}
	return NewContactStore(setupTestProvider(t), WithClock(clock.Now)), clock
}

func newContact(first, email string) *models.Contact {
	return &models.Contact{
		FirstName: first,
		LastName:  "Doe",
		Location:  "London",
		Phone:     "+441234567890",
		Email:     email,
	}
}

func mustAdd(t *testing.T, s *ContactStore, c *models.Contact) int64 {
	t.Helper()
	id, err := s.Add(context.Background(), c)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return id
}

// failingConnector always fails to hand out a handle.
type failingConnector struct {
	err error
}

func (f failingConnector) Acquire(context.Context) (*sql.DB, error) { return nil, f.err }

func (f failingConnector) Dialect() Dialect { return DialectSQLite }
