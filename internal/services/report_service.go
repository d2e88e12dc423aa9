package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/store"
)

// ReportService handles the report lifecycle up to (but not including)
// resolution; settlement belongs to ModerationService, which performs it
// inside the moderation transaction.
type ReportService struct {
	store store.Store
}

func NewReportService(s store.Store) *ReportService {
	return &ReportService{store: s}
}

// File records a new report. A reporter can file at most one report per piece
// of content; the duplicate check is a pre-insert read, not a uniqueness
// constraint, so two concurrent identical filings can both land. Accepted gap.
func (s *ReportService) File(ctx context.Context, req *models.FileReportRequest) (*models.Report, error) {
	exists, err := s.store.Reports().ExistsFor(ctx, req.ContentID, req.ReportingUser)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReport
	}

	report := &models.Report{
		ID:            uuid.New().String(),
		ContentType:   req.ContentType,
		ContentID:     req.ContentID,
		ReportingUser: req.ReportingUser,
		ReportedUser:  req.ReportedUser,
		Reason:        req.Reason,
		ReportCreated: time.Now().UTC(),
	}

	if err := s.store.Reports().Insert(ctx, report); err != nil {
		return nil, err
	}

	log.Printf("[reports] filed id=%s contentType=%s contentId=%s", report.ID, report.ContentType, report.ContentID)
	return report, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.store.Reports().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	return s.store.Reports().Find(ctx, filter)
}
