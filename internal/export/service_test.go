package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhsiao/addressbook/internal/config"
	"github.com/kimhsiao/addressbook/internal/db"
	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/models"
	"github.com/kimhsiao/addressbook/internal/services"
)

func newTestService(t *testing.T) (*Service, *services.ContactService) {
	t.Helper()
	p, err := db.NewProvider(config.DatabaseConfig{URL: "sqlite::memory:", Password: "unused"})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	contacts := services.NewContactService(db.NewContactStore(p))
	return NewService(contacts), contacts
}

func seed(t *testing.T, contacts *services.ContactService, rows ...[5]string) {
	t.Helper()
	for _, r := range rows {
		_, err := contacts.AddContact(context.Background(), services.CreateFromFields(r[0], r[1], r[2], r[3], r[4]))
		require.NoError(t, err)
	}
}

func TestService_Export(t *testing.T) {
	svc, contacts := newTestService(t)
	seed(t, contacts,
		[5]string{"John", "Doe", "London", "+441234567890", "john@example.com"},
		[5]string{"Jane", "Roe", "Paris, France", "+331234567890", "jane@example.com"},
	)

	var buf bytes.Buffer
	result, err := svc.Export(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ItemCount)
	assert.Equal(t, int64(buf.Len()), result.SizeBytes)
	assert.Len(t, result.Checksum, 64)

	assert.True(t, strings.HasPrefix(result.RunID, "export-"), result.RunID)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"John", "Doe", "London", "+441234567890", "john@example.com"}, records[1])
	assert.Equal(t, "Paris, France", records[2][2], "embedded commas survive the round trip")
}

func TestService_Export_emptyWritesHeaderOnly(t *testing.T) {
	svc, _ := newTestService(t)

	var buf bytes.Buffer
	result, err := svc.Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ItemCount)
	assert.Equal(t, "FirstName,LastName,Location,Phone,Email\n", buf.String())
}

func TestService_Import(t *testing.T) {
	svc, contacts := newTestService(t)
	seed(t, contacts, [5]string{"John", "Doe", "London", "+441234567890", "john@example.com"})

	input := strings.Join([]string{
		"FirstName,LastName,Location,Phone,Email",
		"Jane,Roe,Paris,+331234567890,jane@example.com",
		" John , Doe , London , +441234567890 , john@example.com ",
		"Jane,Roe,Paris,+331234567890,jane@example.com",
		"Short,Row,Only",
		"Bad,Phone,Oslo,12345,bad@example.com",
		"No,Email,Rome,+391234567890",
		`"Smith, Jr.",Sam,"Austin, TX",+151212345678,sam@example.com`,
	}, "\n")

	result, err := svc.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Skipped, "existing and in-file duplicates are skipped")
	assert.Equal(t, 3, result.Errors)
	require.Len(t, result.Messages, 3)
	assert.Contains(t, result.Messages[0], "line 5")
	assert.Contains(t, result.Messages[1], "Invalid phone number")
	assert.Contains(t, result.Messages[2], "All fields are required.")

	all, err := contacts.ListContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Smith, Jr.", all[2].FirstName)
}

func TestService_Import_fourFieldRowIsRejected(t *testing.T) {
	svc, contacts := newTestService(t)

	input := "FirstName,LastName,Location,Phone,Email\nJane,Doe,London,+441234567890\n"
	result, err := svc.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Zero(t, result.Imported)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.Messages, 1)
	assert.Contains(t, result.Messages[0], "line 2")
	assert.Contains(t, result.Messages[0], "VALIDATION_ERROR")

	all, err := contacts.ListContacts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_Import_withoutHeader(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Import(context.Background(), strings.NewReader("Ann,Lee,Seoul,+821234567890,ann@example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Errors)
}

func TestService_ExportImportRoundTrip(t *testing.T) {
	source, sourceContacts := newTestService(t)
	seed(t, sourceContacts,
		[5]string{"John", "Doe", "London", "+441234567890", "john@example.com"},
		[5]string{"Jane", "Roe", "Paris, France", "+331234567890", "jane@example.com"},
	)

	path := filepath.Join(t.TempDir(), "out", "contacts.csv")
	exported, err := source.ExportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, exported.FilePath)

	target, targetContacts := newTestService(t)
	imported, err := target.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, imported.Imported)

	want, err := sourceContacts.ListContacts(context.Background())
	require.NoError(t, err)
	got, err := targetContacts.ListContacts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Fields(), got[i].Fields())
	}
}

func TestService_ImportFile_missing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, apperrors.Is(err, apperrors.ErrImportFailed))
}

// stubImporter lets tests inject listing failures.
type stubImporter struct {
	listErr error
}

func (s stubImporter) ListContacts(context.Context) ([]*models.Contact, error) {
	return nil, s.listErr
}

func (s stubImporter) AddContactWithExisting(context.Context, *models.Contact, []*models.Contact) (int64, error) {
	return 0, errors.New("unexpected call")
}

func TestService_listErrors(t *testing.T) {
	svc := NewService(stubImporter{listErr: apperrors.New(apperrors.ErrConnection, "down")})

	_, err := svc.Export(context.Background(), &bytes.Buffer{})
	assert.True(t, apperrors.Is(err, apperrors.ErrExportFailed))

	_, err = svc.Import(context.Background(), strings.NewReader("a,b,c,d,e"))
	assert.True(t, apperrors.Is(err, apperrors.ErrImportFailed))
}

func TestService_ExportFile_defaultName(t *testing.T) {
	svc, _ := newTestService(t)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 9, 30, 5, 0, time.Local) }

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	result, err := svc.ExportFile(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "AddressBookExport-20240615T093005.csv", result.FilePath)
	_, err = os.Stat(filepath.Join(dir, result.FilePath))
	assert.NoError(t, err)
}

func TestDefaultExportFilename(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "AddressBookExport-20250102T030405.csv", DefaultExportFilename(ts))
}
