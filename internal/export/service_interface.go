// Package export provides export/import service interfaces.
package export

import (
	"context"
	"io"
)

// Transfer defines the contract for CSV import/export.
type Transfer interface {
	Export(ctx context.Context, w io.Writer) (*ExportResult, error)
	ExportFile(ctx context.Context, path string) (*ExportResult, error)
	Import(ctx context.Context, r io.Reader) (*ImportResult, error)
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
}

// Ensure *Service implements the interface at compile time.
var _ Transfer = (*Service)(nil)
