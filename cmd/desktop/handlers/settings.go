package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kimhsiao/addressbook/internal/db"
	"github.com/kimhsiao/addressbook/internal/models"
)

// SettingsHandler handles the persisted UI theme of the configured user.
type SettingsHandler struct {
	repo     db.SettingsRepository
	username string
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(repo db.SettingsRepository, username string) *SettingsHandler {
	return &SettingsHandler{repo: repo, username: username}
}

// GetTheme handles GET /api/settings/theme.
func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.repo.GetTheme(r.Context(), h.username)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.UserSettings{Username: h.username, Theme: theme})
}

// SaveTheme handles PUT /api/settings/theme.
func (h *SettingsHandler) SaveTheme(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	theme := strings.ToLower(strings.TrimSpace(request.Theme))
	if theme != models.ThemeLight && theme != models.ThemeDark {
		respondWithError(w, http.StatusBadRequest, "theme must be light or dark")
		return
	}

	if err := h.repo.SaveTheme(r.Context(), h.username, theme); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, models.UserSettings{Username: h.username, Theme: theme})
}
