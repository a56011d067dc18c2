package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daap14/eventpass/internal/registration"
)

var (
	// ErrNoRegistrations is returned when there is nothing to export.
	ErrNoRegistrations = errors.New("no registrations to export")

	// ErrMirrorNotConfigured is returned by MirrorToSheets when no
	// spreadsheet is configured.
	ErrMirrorNotConfigured = errors.New("sheets mirror not configured")
)

// File is a generated workbook.
type File struct {
	Name string
	Data []byte
}

// Service builds exports from the registration store.
type Service struct {
	repo     registration.Repository
	archiver Archiver
	mirror   Mirror
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithArchiver copies every generated workbook to a.
func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithMirror enables MirrorToSheets.
func WithMirror(m Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithClock replaces the time source used for filenames.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new export Service.
func NewService(repo registration.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export renders every registration into a workbook. Archival failures are
// logged and do not fail the export.
func (s *Service) Export(ctx context.Context) (*File, error) {
	regs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	if len(regs) == 0 {
		return nil, ErrNoRegistrations
	}

	data, err := Workbook(Rows(regs))
	if err != nil {
		return nil, err
	}
	file := &File{Name: Filename(s.now()), Data: data}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, file.Name, file.Data); err != nil {
			slog.Error("failed to archive export", "error", err, "file", file.Name)
		} else {
			slog.Info("export archived", "file", file.Name, "bytes", len(file.Data))
		}
	}

	return file, nil
}

// MirrorToSheets rewrites the configured spreadsheet with the export rows and
// returns the number of data rows written.
func (s *Service) MirrorToSheets(ctx context.Context) (int, error) {
	if s.mirror == nil {
		return 0, ErrMirrorNotConfigured
	}

	regs, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing registrations: %w", err)
	}

	rows := Rows(regs)
	if err := s.mirror.Replace(ctx, rows); err != nil {
		return 0, err
	}

	slog.Info("registrations mirrored to sheet", "rows", len(rows)-1)
	return len(rows) - 1, nil
}
