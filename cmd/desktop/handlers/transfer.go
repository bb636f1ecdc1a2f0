package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kimhsiao/addressbook/internal/export"
	"github.com/kimhsiao/addressbook/internal/services"
)

// maxImportBytes bounds the size of an uploaded CSV body.
const maxImportBytes = 10 << 20

// BackupRunner writes a single backup on demand.
type BackupRunner interface {
	RunOnce(ctx context.Context) (*export.ExportResult, error)
}

// TransferHandler handles CSV export, import, printing and backups.
type TransferHandler struct {
	transfer export.Transfer
	contacts services.ContactManager
	backups  BackupRunner
	now      func() time.Time
}

// NewTransferHandler creates a new TransferHandler. backups may be nil.
func NewTransferHandler(transfer export.Transfer, contacts services.ContactManager, backups BackupRunner) *TransferHandler {
	return &TransferHandler{
		transfer: transfer,
		contacts: contacts,
		backups:  backups,
		now:      time.Now,
	}
}

// Export handles GET /api/export and streams the CSV as an attachment.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	result, err := h.transfer.Export(r.Context(), &buf)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.DefaultExportFilename(h.now())))
	w.Header().Set("X-Export-Checksum", result.Checksum)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Import handles POST /api/import with a CSV request body.
//
// The response is 200 when every row was imported or skipped, 206 when some
// rows failed, and 400 when rows failed and none were added.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := h.transfer.Import(r.Context(), body)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	status := http.StatusOK
	switch {
	case result.Errors > 0 && result.Imported == 0:
		status = http.StatusBadRequest
	case result.Errors > 0:
		status = http.StatusPartialContent
	}
	respondWithJSON(w, status, result)
}

// Print handles GET /api/print and returns the plain-text contact listing.
func (h *TransferHandler) Print(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.ListContacts(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteListing(&buf, contacts); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Backup handles POST /api/backup.
func (h *TransferHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Backups are not configured")
		return
	}

	result, err := h.backups.RunOnce(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}
