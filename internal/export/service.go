// Package export provides CSV import and export of contacts.
package export

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/logging"
	"github.com/kimhsiao/addressbook/internal/models"
	"github.com/kimhsiao/addressbook/internal/uuid"
)

// Header is the fixed column header written by Export.
var Header = []string{"FirstName", "LastName", "Location", "Phone", "Email"}

const minImportFields = 4

// ContactImporter is the slice of the contact service used for import and export.
type ContactImporter interface {
	ListContacts(ctx context.Context) ([]*models.Contact, error)
	AddContactWithExisting(ctx context.Context, candidate *models.Contact, existing []*models.Contact) (int64, error)
}

// Service provides export/import functionality.
type Service struct {
	contacts ContactImporter
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(contacts ContactImporter) *Service {
	return &Service{contacts: contacts, now: time.Now}
}

// ExportResult represents the result of an export operation.
type ExportResult struct {
	RunID     string        `json:"run_id"`
	FilePath  string        `json:"file_path,omitempty"`
	SizeBytes int64         `json:"size_bytes"`
	ItemCount int           `json:"item_count"`
	Checksum  string        `json:"checksum"`
	Duration  time.Duration `json:"duration"`
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	RunID    string        `json:"run_id"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   int           `json:"errors"`
	Messages []string      `json:"messages,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultExportFilename names an export file after t.
func DefaultExportFilename(t time.Time) string {
	return fmt.Sprintf("AddressBookExport-%s.csv", t.Format("20060102T150405"))
}

// Export writes the header and one CSV row per contact to w.
func (s *Service) Export(ctx context.Context, w io.Writer) (*ExportResult, error) {
	startTime := s.now()
	runID := uuid.NewRunID("export")

	contacts, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to list contacts", err)
	}

	hash := sha256.New()
	counter := &countingWriter{w: io.MultiWriter(w, hash)}
	csvWriter := csv.NewWriter(counter)

	if err := csvWriter.Write(Header); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to write header", err)
	}
	for _, c := range contacts {
		if err := csvWriter.Write([]string{c.FirstName, c.LastName, c.Location, c.Phone, c.Email}); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to write contact", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to flush export", err)
	}

	result := &ExportResult{
		RunID:     runID,
		SizeBytes: counter.n,
		ItemCount: len(contacts),
		Checksum:  hex.EncodeToString(hash.Sum(nil)),
		Duration:  s.now().Sub(startTime),
	}
	logging.Info("contacts exported", map[string]interface{}{
		"run_id":     runID,
		"item_count": result.ItemCount,
		"size_bytes": result.SizeBytes,
	})
	return result, nil
}

// ExportFile exports to path. An empty path writes DefaultExportFilename in the working directory.
func (s *Service) ExportFile(ctx context.Context, path string) (*ExportResult, error) {
	if path == "" {
		path = DefaultExportFilename(s.now())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to create export directory", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExportFailed, "failed to create export file", err)
	}

	result, err := s.Export(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = apperrors.Wrap(apperrors.ErrExportFailed, "failed to close export file", closeErr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	result.FilePath = path
	return result, nil
}

// Import reads contacts from r and adds each through the contact service.
// Duplicates are skipped; malformed and invalid rows are counted as errors.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	startTime := s.now()
	result := &ImportResult{RunID: uuid.NewRunID("import")}

	existing, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, "failed to load existing contacts", err)
	}

	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrImportFailed, "import cancelled", err)
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !stderrors.As(err, &parseErr) {
				return nil, apperrors.Wrap(apperrors.ErrImportFailed, "failed to read import data", err)
			}
			result.fail(line, err.Error())
			continue
		}

		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) < minImportFields {
			result.fail(line, fmt.Sprintf("expected at least %d fields, got %d", minImportFields, len(record)))
			continue
		}

		candidate := fromRecord(record)
		_, err = s.contacts.AddContactWithExisting(ctx, candidate, existing)
		switch {
		case err == nil:
			result.Imported++
			existing = append(existing, candidate)
		case apperrors.Is(err, apperrors.ErrDuplicate):
			result.Skipped++
		default:
			result.fail(line, err.Error())
		}
	}

	result.Duration = s.now().Sub(startTime)
	logging.Info("contacts imported", map[string]interface{}{
		"run_id":   result.RunID,
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"errors":   result.Errors,
	})
	return result, nil
}

// ImportFile imports contacts from the file at path.
func (s *Service) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, "failed to open import file", err)
	}
	defer f.Close()
	return s.Import(ctx, f)
}

func (r *ImportResult) fail(line int, message string) {
	r.Errors++
	r.Messages = append(r.Messages, fmt.Sprintf("line %d: %s", line, message))
}

// isHeader reports whether record looks like a column header row.
func isHeader(record []string) bool {
	for _, field := range record {
		if strings.Contains(strings.ToLower(field), "firstname") {
			return true
		}
	}
	return false
}

// fromRecord maps a CSV row onto a contact. A four-field row yields an empty
// email, which validation then rejects: every stored field must be non-blank.
func fromRecord(record []string) *models.Contact {
	email := ""
	if len(record) > minImportFields {
		email = record[4]
	}
	c := &models.Contact{}
	c.SetFields(models.Fields{
		FirstName: record[0],
		LastName:  record[1],
		Location:  record[2],
		Phone:     record[3],
		Email:     email,
	}.Trimmed())
	return c
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
