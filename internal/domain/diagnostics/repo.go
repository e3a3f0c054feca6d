package diagnostics

import (
	"context"

	"github.com/google/uuid"
)

// AnalysisRepository persists laboratory analyses.
type AnalysisRepository interface {
	Create(ctx context.Context, a *Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Analysis, int, error)
	Update(ctx context.Context, a *Analysis) error
}

// ImagingReportRepository persists AI imaging reports.
type ImagingReportRepository interface {
	Create(ctx context.Context, r *ImagingReport) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ImagingReport, int, error)
}
