// Package models tests for data model definitions.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

// =====================================================
// Contact Tests
// =====================================================

// TestContact_AgeInDays verifies whole-day truncation.
func TestContact_AgeInDays(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		created *time.Time
		want    int
	}{
		{"nil created", nil, 0},
		{"same instant", ptr(now), 0},
		{"23 hours", ptr(now.Add(-23 * time.Hour)), 0},
		{"exactly one day", ptr(now.Add(-24 * time.Hour)), 1},
		{"ten and a half days", ptr(now.Add(-252 * time.Hour)), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contact{CreatedAt: tt.created}
			if got := c.AgeInDays(now); got != tt.want {
				t.Errorf("AgeInDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestContact_IsRecentlyModified verifies the seven day window.
func TestContact_IsRecentlyModified(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		updated *time.Time
		want    bool
	}{
		{"nil updated", nil, false},
		{"just now", ptr(now), true},
		{"six days ago", ptr(now.AddDate(0, 0, -6)), true},
		{"exactly seven days ago", ptr(now.Add(-RecentWindow)), true},
		{"just past seven days", ptr(now.Add(-RecentWindow - time.Millisecond)), false},
		{"eight days ago", ptr(now.AddDate(0, 0, -8)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Contact{UpdatedAt: tt.updated}
			if got := c.IsRecentlyModified(now); got != tt.want {
				t.Errorf("IsRecentlyModified() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestContact_Display verifies display formatting and the N/A fallback.
func TestContact_Display(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 7, 0, 0, time.Local)
	c := &Contact{CreatedAt: &ts}

	if got := c.CreatedAtDisplay(); got != "Mar 05, 2024 09:07" {
		t.Errorf("CreatedAtDisplay() = %q", got)
	}
	if got := c.UpdatedAtDisplay(); got != "N/A" {
		t.Errorf("UpdatedAtDisplay() = %q, want N/A", got)
	}
}

// TestContact_FullName verifies name joining.
func TestContact_FullName(t *testing.T) {
	if got := (&Contact{FirstName: "Ada", LastName: "Lovelace"}).FullName(); got != "Ada Lovelace" {
		t.Errorf("FullName() = %q", got)
	}
	if got := (&Contact{FirstName: "Cher"}).FullName(); got != "Cher" {
		t.Errorf("FullName() = %q, want Cher", got)
	}
}

// TestContact_JSON verifies serialization keys.
func TestContact_JSON(t *testing.T) {
	c := Contact{ID: 3, FirstName: "Ada", Email: "ada@example.com"}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["first_name"] != "Ada" {
		t.Errorf("first_name = %v, want Ada", decoded["first_name"])
	}
	if _, ok := decoded["created_at"]; ok {
		t.Error("created_at should be omitted when nil")
	}
}

// =====================================================
// Fields Tests
// =====================================================

// TestFields_Equal verifies trimming and case sensitivity.
func TestFields_Equal(t *testing.T) {
	base := Fields{"John", "Doe", "NYC", "+441234567890", "j@x.com"}

	padded := Fields{" John ", "Doe\t", " NYC", "+441234567890 ", " j@x.com"}
	if !base.Equal(padded) {
		t.Error("Equal() should ignore surrounding whitespace")
	}

	cased := base
	cased.FirstName = "john"
	if base.Equal(cased) {
		t.Error("Equal() should be case-sensitive")
	}

	changed := []Fields{
		{"Jon", "Doe", "NYC", "+441234567890", "j@x.com"},
		{"John", "Do", "NYC", "+441234567890", "j@x.com"},
		{"John", "Doe", "LA", "+441234567890", "j@x.com"},
		{"John", "Doe", "NYC", "+441234567891", "j@x.com"},
		{"John", "Doe", "NYC", "+441234567890", "k@x.com"},
	}
	for _, f := range changed {
		if base.Equal(f) {
			t.Errorf("Equal(%v) = true, want false", f)
		}
	}
}

// TestFields_Hash verifies the hash follows Equal.
func TestFields_Hash(t *testing.T) {
	a := Fields{"John", "Doe", "NYC", "+441234567890", "j@x.com"}
	b := Fields{" John", "Doe ", "NYC", "+441234567890", "j@x.com"}
	if a.Hash() != b.Hash() {
		t.Error("Hash() should match for equal trimmed tuples")
	}
	if len(a.Hash()) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(a.Hash()))
	}

	shifted1 := Fields{FirstName: "ab", LastName: "c"}
	shifted2 := Fields{FirstName: "a", LastName: "bc"}
	if shifted1.Hash() == shifted2.Hash() {
		t.Error("Hash() should separate field boundaries")
	}
}

// TestContact_Fields verifies tuple extraction.
func TestContact_Fields(t *testing.T) {
	c := &Contact{ID: 9, FirstName: "A", LastName: "B", Location: "C", Phone: "D", Email: "E"}
	want := Fields{"A", "B", "C", "D", "E"}
	if c.Fields() != want {
		t.Errorf("Fields() = %v, want %v", c.Fields(), want)
	}
}

// TestContact_SetFields verifies tuple assignment leaves identity alone.
func TestContact_SetFields(t *testing.T) {
	c := &Contact{ID: 4}
	c.SetFields(Fields{"A", "B", "C", "D", "E"})
	if c.ID != 4 || c.FirstName != "A" || c.Email != "E" {
		t.Errorf("SetFields() = %+v", c)
	}
}
