package services

import (
	"strings"
	"time"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
)

// DateLayout is the accepted input format for date ranges.
const DateLayout = "2006-01-02"

const (
	recentAgeDays = 30
	oldAgeDays    = 365
)

// ParseDateRange turns two YYYY-MM-DD strings into an inclusive range
// from 00:00:00 on start to the last millisecond of end, in loc.
func ParseDateRange(start, end string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	from, err := time.ParseInLocation(DateLayout, strings.TrimSpace(start), loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Wrap(apperrors.ErrInvalid, "invalid start date, please use format: YYYY-MM-DD", err)
	}
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(end), loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Wrap(apperrors.ErrInvalid, "invalid end date, please use format: YYYY-MM-DD", err)
	}
	to := day.AddDate(0, 0, 1).Add(-time.Millisecond)
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperrors.New(apperrors.ErrInvalid, "end date is before start date")
	}
	return from, to, nil
}

// AnalyzeAges summarizes how long ago contacts were created.
func AnalyzeAges(contacts []*models.Contact, now time.Time) models.AgeAnalysis {
	var analysis models.AgeAnalysis
	if len(contacts) == 0 {
		return analysis
	}

	total := 0
	analysis.NewestAge = -1
	for _, c := range contacts {
		age := c.AgeInDays(now)
		total += age
		if age > analysis.OldestAge {
			analysis.OldestAge = age
		}
		if analysis.NewestAge < 0 || age < analysis.NewestAge {
			analysis.NewestAge = age
		}
		if age < recentAgeDays {
			analysis.RecentCount++
		}
		if age > oldAgeDays {
			analysis.OldCount++
		}
	}
	analysis.TotalContacts = len(contacts)
	analysis.AverageAge = float64(total) / float64(len(contacts))
	return analysis
}
