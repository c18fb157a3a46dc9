package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/export"
	"github.com/mansoorceksport/fitcoach/internal/store"
	"github.com/oklog/ulid/v2"
)

// ExportService renders the current plan as a PDF and archives it
type ExportService struct {
	files domain.FileRepository
	now   func() time.Time
}

// NewExportService creates a new export service. files may be nil, in which
// case only direct downloads are available.
func NewExportService(files domain.FileRepository) *ExportService {
	return &ExportService{files: files, now: time.Now}
}

// ExportedPlan is a rendered plan document
type ExportedPlan struct {
	Filename string
	Data     []byte
}

// Render produces the PDF for the session's current profile and plan
func (s *ExportService) Render(st *store.Store) (*ExportedPlan, error) {
	snapshot := st.Snapshot()
	if snapshot.UserData == nil || snapshot.FitnessPlan == nil {
		return nil, domain.ErrNoActivePlan
	}

	data, err := export.PDF(*snapshot.UserData, snapshot.FitnessPlan)
	if err != nil {
		return nil, err
	}
	return &ExportedPlan{
		Filename: export.Filename(snapshot.UserData.Name),
		Data:     data,
	}, nil
}

// Archive renders the PDF and uploads it, returning its URL
func (s *ExportService) Archive(ctx context.Context, st *store.Store) (string, *ExportedPlan, error) {
	if s.files == nil {
		return "", nil, fmt.Errorf("%w: no file storage configured", domain.ErrConfiguration)
	}

	doc, err := s.Render(st)
	if err != nil {
		return "", nil, err
	}

	id := ulid.MustNew(ulid.Timestamp(s.now()), rand.Reader).String()
	key := fmt.Sprintf("exports/%s/%s", id, doc.Filename)

	url, err := s.files.Upload(ctx, doc.Data, key, export.ContentType)
	if err != nil {
		return "", nil, err
	}
	return url, doc, nil
}
