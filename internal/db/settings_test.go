package db

import (
	"context"
	"testing"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
)

// TestSettingsStore_Theme verifies default, save and overwrite.
func TestSettingsStore_Theme(t *testing.T) {
	store := NewSettingsStore(setupTestProvider(t))
	ctx := context.Background()

	theme, err := store.GetTheme(ctx, "alice")
	if err != nil {
		t.Fatalf("GetTheme() error = %v", err)
	}
	if theme != models.ThemeLight {
		t.Errorf("GetTheme() default = %q, want light", theme)
	}

	if err := store.SaveTheme(ctx, "alice", " Dark "); err != nil {
		t.Fatalf("SaveTheme() error = %v", err)
	}
	if theme, _ := store.GetTheme(ctx, "alice"); theme != models.ThemeDark {
		t.Errorf("GetTheme() = %q, want dark", theme)
	}

	if err := store.SaveTheme(ctx, "alice", models.ThemeLight); err != nil {
		t.Fatalf("SaveTheme() overwrite error = %v", err)
	}
	settings, err := store.Settings(ctx, "alice")
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings.Theme != models.ThemeLight || settings.Username != "alice" {
		t.Errorf("Settings() = %+v", settings)
	}

	if theme, _ := store.GetTheme(ctx, "bob"); theme != models.ThemeLight {
		t.Errorf("GetTheme(bob) = %q, want light", theme)
	}
}

// TestSettingsStore_SaveTheme_invalid verifies blank input is rejected.
func TestSettingsStore_SaveTheme_invalid(t *testing.T) {
	store := NewSettingsStore(setupTestProvider(t))

	if err := store.SaveTheme(context.Background(), "", "dark"); !apperrors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("SaveTheme() error = %v, want INVALID_INPUT", err)
	}
	if err := store.SaveTheme(context.Background(), "alice", "  "); !apperrors.Is(err, apperrors.ErrInvalid) {
		t.Errorf("SaveTheme() error = %v, want INVALID_INPUT", err)
	}
}
