package export_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/daap14/eventpass/internal/export"
	"github.com/daap14/eventpass/internal/testutil"
)

type mockArchiver struct {
	archiveFn func(ctx context.Context, name string, data []byte) error
	names     []string
}

func (m *mockArchiver) Archive(ctx context.Context, name string, data []byte) error {
	m.names = append(m.names, name)
	if m.archiveFn != nil {
		return m.archiveFn(ctx, name, data)
	}
	return nil
}

type mockMirror struct {
	rows [][]string
	err  error
}

func (m *mockMirror) Replace(_ context.Context, rows [][]string) error {
	m.rows = rows
	return m.err
}

var fixedNow = time.Date(2026, 10, 17, 9, 5, 3, 0, time.UTC)

func seededRepo() *testutil.MemoryRepository {
	repo := testutil.NewMemoryRepository()
	repo.Seed(
		testutil.Team("PASS-one", "Solo", "MIT", false),
		testutil.Team("PASS-two", "Duo", "IIT", false, false),
	)
	return repo
}

func TestRows_Layout(t *testing.T) {
	t.Parallel()

	regs, err := seededRepo().List(context.Background())
	require.NoError(t, err)

	rows := export.Rows(regs)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, []string{"Solo", "PASS-one", "Solo Lead", "pass-one@example.com", "9999999999", "MIT", "2nd", "Team Leader"}, rows[1])
	assert.Equal(t, "Team Leader", rows[2][7])
	assert.Equal(t, "Duo Member A", rows[3][2])
	assert.Equal(t, "-", rows[3][6])
	assert.Equal(t, "Member", rows[3][7])
}

func TestWorkbook_ReadBack(t *testing.T) {
	t.Parallel()

	regs, err := seededRepo().List(context.Background())
	require.NoError(t, err)

	data, err := export.Workbook(export.Rows(regs))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetName}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Header, rows[0])
	assert.Equal(t, "PASS-two", rows[3][1])

	width, err := f.GetColWidth(export.SheetName, "D")
	require.NoError(t, err)
	assert.Equal(t, 30.0, width)
}

func TestFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Registration_Details_17-10-2026_09-05-03.xlsx", export.Filename(fixedNow))
}

func TestExport_Success(t *testing.T) {
	t.Parallel()

	archiver := &mockArchiver{}
	svc := export.NewService(seededRepo(), export.WithArchiver(archiver), export.WithClock(func() time.Time { return fixedNow }))

	file, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Registration_Details_17-10-2026_09-05-03.xlsx", file.Name)
	assert.NotEmpty(t, file.Data)
	assert.Equal(t, []string{file.Name}, archiver.names)
}

func TestExport_ArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	archiver := &mockArchiver{archiveFn: func(context.Context, string, []byte) error {
		return errors.New("bucket unreachable")
	}}
	svc := export.NewService(seededRepo(), export.WithArchiver(archiver))

	file, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, file.Data)
}

func TestExport_Empty(t *testing.T) {
	t.Parallel()

	_, err := export.NewService(testutil.NewMemoryRepository()).Export(context.Background())
	assert.ErrorIs(t, err, export.ErrNoRegistrations)
}

func TestMirrorToSheets(t *testing.T) {
	t.Parallel()

	_, err := export.NewService(seededRepo()).MirrorToSheets(context.Background())
	assert.ErrorIs(t, err, export.ErrMirrorNotConfigured)

	mirror := &mockMirror{}
	n, err := export.NewService(seededRepo(), export.WithMirror(mirror)).MirrorToSheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.Len(t, mirror.rows, 4)
	assert.Equal(t, export.Header, mirror.rows[0])

	mirror = &mockMirror{err: errors.New("quota exceeded")}
	_, err = export.NewService(seededRepo(), export.WithMirror(mirror)).MirrorToSheets(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")
}
