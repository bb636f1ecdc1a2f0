package handlers

import (
	"net/http"
	"time"

	"github.com/kimhsiao/addressbook/internal/models"
	"github.com/kimhsiao/addressbook/internal/services"
)

// StatsHandler serves contact statistics.
type StatsHandler struct {
	contacts services.ContactManager
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(contacts services.ContactManager) *StatsHandler {
	return &StatsHandler{contacts: contacts}
}

type statisticsResponse struct {
	TotalContacts    int    `json:"total_contacts"`
	CreatedThisWeek  int    `json:"created_this_week"`
	ModifiedThisWeek int    `json:"modified_this_week"`
	OldestContact    string `json:"oldest_contact"`
	NewestContact    string `json:"newest_contact"`
}

func displayTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Local().Format(models.DisplayLayout)
}

// Statistics handles GET /api/stats.
func (h *StatsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contacts.Statistics(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, statisticsResponse{
		TotalContacts:    stats.TotalContacts,
		CreatedThisWeek:  stats.CreatedThisWeek,
		ModifiedThisWeek: stats.ModifiedThisWeek,
		OldestContact:    displayTime(stats.OldestContact),
		NewestContact:    displayTime(stats.NewestContact),
	})
}

type ageAnalysisResponse struct {
	TotalContacts int     `json:"total_contacts"`
	AverageAge    float64 `json:"average_age_days"`
	OldestAge     int     `json:"oldest_age_days"`
	NewestAge     int     `json:"newest_age_days"`
	RecentCount   int     `json:"recent_count"`
	OldCount      int     `json:"old_count"`
}

// AgeAnalysis handles GET /api/stats/ages.
func (h *StatsHandler) AgeAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.contacts.AgeAnalysis(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ageAnalysisResponse{
		TotalContacts: analysis.TotalContacts,
		AverageAge:    analysis.AverageAge,
		OldestAge:     analysis.OldestAge,
		NewestAge:     analysis.NewestAge,
		RecentCount:   analysis.RecentCount,
		OldCount:      analysis.OldCount,
	})
}
