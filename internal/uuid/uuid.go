// Package uuid generates the run identifiers attached to import and export
// operations.
package uuid

import (
	"strings"

	"github.com/google/uuid"
)

// New generates a new UUID v4 string.
func New() string {
	return uuid.New().String()
}

// NewRunID returns a UUID v4 prefixed with the operation kind,
// e.g. "import-9b2f...".
func NewRunID(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		return New()
	}
	return kind + "-" + New()
}
