package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
)

var upsertThemeQuery = map[Dialect]string{
	DialectSQLite: `INSERT INTO UserSettings (username, theme) VALUES (?, ?)
	ON CONFLICT(username) DO UPDATE SET theme = excluded.theme`,
	DialectMySQL: `INSERT INTO UserSettings (username, theme) VALUES (?, ?)
	ON DUPLICATE KEY UPDATE theme = VALUES(theme)`,
}

// SettingsStore persists per-user UI preferences.
type SettingsStore struct {
	conns Connector
}

// NewSettingsStore creates a new SettingsStore instance.
func NewSettingsStore(conns Connector) *SettingsStore {
	return &SettingsStore{conns: conns}
}

// GetTheme returns the stored theme for username, or the light theme when none is saved.
func (s *SettingsStore) GetTheme(ctx context.Context, username string) (string, error) {
	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return "", err
	}

	var theme string
	err = db.QueryRowContext(ctx, "SELECT theme FROM UserSettings WHERE username = ?", username).Scan(&theme)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.ThemeLight, nil
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrDatabase, "failed to load theme", err)
	}
	return theme, nil
}

// SaveTheme stores theme for username, replacing any previous value.
func (s *SettingsStore) SaveTheme(ctx context.Context, username, theme string) error {
	username = strings.TrimSpace(username)
	theme = strings.ToLower(strings.TrimSpace(theme))
	if username == "" || theme == "" {
		return apperrors.New(apperrors.ErrInvalid, "username and theme are required")
	}

	db, err := s.conns.Acquire(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, upsertThemeQuery[s.conns.Dialect()], username, theme); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "failed to save theme", err)
	}
	return nil
}

// Settings returns the full settings record for username.
func (s *SettingsStore) Settings(ctx context.Context, username string) (*models.UserSettings, error) {
	theme, err := s.GetTheme(ctx, username)
	if err != nil {
		return nil, err
	}
	return &models.UserSettings{Username: username, Theme: theme}, nil
}
