package diagnostics

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinichub/clinichub/internal/platform/ai"
	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// Notifier pushes a persisted notification to an account, best effort.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, kind, message string)
}

// Service covers laboratory analyses and AI imaging reports.
type Service struct {
	analyses AnalysisRepository
	reports  ImagingReportRepository
	analyzer ai.Analyzer
	notifier Notifier
}

func NewService(analyses AnalysisRepository, reports ImagingReportRepository, analyzer ai.Analyzer, notifier Notifier) *Service {
	return &Service{analyses: analyses, reports: reports, analyzer: analyzer, notifier: notifier}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httperr.NotFound(message)
	}
	return httperr.Internal(err)
}

// CreateAnalysis orders a pending analysis.
func (s *Service) CreateAnalysis(ctx context.Context, req *CreateAnalysisRequest) (*Analysis, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}
	analysis := &Analysis{
		AccountID:    uuid.MustParse(req.AccountID),
		LaboratoryID: uuid.MustParse(req.LaboratoryID),
		Type:         req.Type,
		Status:       AnalysisPending,
	}
	if err := s.analyses.Create(ctx, analysis); err != nil {
		return nil, httperr.Internal(err)
	}
	s.notifier.Notify(ctx, analysis.AccountID, "analysis",
		"A "+analysis.Type+" analysis has been ordered for you.")
	return analysis, nil
}

// UpdateAnalysis closes out an analysis as completed or cancelled, attaching
// the results payload.
func (s *Service) UpdateAnalysis(ctx context.Context, id uuid.UUID, req *UpdateAnalysisRequest) (*Analysis, error) {
	if req.Status != AnalysisCompleted && req.Status != AnalysisCancelled {
		return nil, httperr.BadRequest("status must be completed or cancelled")
	}
	analysis, err := s.analyses.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "analysis not found")
	}
	analysis.Status = req.Status
	if req.Results != nil {
		analysis.Results = req.Results
	}
	if err := s.analyses.Update(ctx, analysis); err != nil {
		return nil, notFoundOr(err, "analysis not found")
	}
	s.notifier.Notify(ctx, analysis.AccountID, "analysis",
		"Your "+analysis.Type+" analysis is "+req.Status+".")
	return analysis, nil
}

// AnalysesByAccount lists an account's analyses.
func (s *Service) AnalysesByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Analysis, int, error) {
	items, total, err := s.analyses.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// AnalyzeImage forwards an uploaded image to the external analysis service
// and persists the prediction as an imaging report. ImagePath is the stored
// upload path, recorded alongside the result.
func (s *Service) AnalyzeImage(ctx context.Context, accountID uuid.UUID, filename, imagePath string, content io.Reader) (*ImagingReport, error) {
	result, err := s.analyzer.PredictImage(ctx, filename, content)
	if err != nil {
		return nil, httperr.Upstream("image analysis service unavailable", err)
	}

	report := &ImagingReport{
		AccountID: accountID,
		ImagePath: imagePath,
		Result:    result,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, httperr.Internal(err)
	}
	s.notifier.Notify(ctx, accountID, "imaging", "Your imaging report is ready.")
	return report, nil
}

// ReportsByAccount lists an account's imaging reports.
func (s *Service) ReportsByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ImagingReport, int, error) {
	items, total, err := s.reports.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}
