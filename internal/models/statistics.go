package models

import "time"

// ContactStatistics summarizes the address book.
type ContactStatistics struct {
	TotalContacts    int        `json:"total_contacts"`
	CreatedThisWeek  int        `json:"created_this_week"`
	ModifiedThisWeek int        `json:"modified_this_week"`
	OldestContact    *time.Time `json:"oldest_contact,omitempty"`
	NewestContact    *time.Time `json:"newest_contact,omitempty"`
}

// AgeAnalysis describes the age distribution of contacts in days.
type AgeAnalysis struct {
	TotalContacts int     `json:"total_contacts"`
	AverageAge    float64 `json:"average_age_days"`
	OldestAge     int     `json:"oldest_age_days"`
	NewestAge     int     `json:"newest_age_days"`
	RecentCount   int     `json:"recent_count"`
	OldCount      int     `json:"old_count"`
}
