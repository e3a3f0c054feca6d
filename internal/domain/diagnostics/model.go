package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// Analysis statuses.
const (
	AnalysisPending   = "pending"
	AnalysisCompleted = "completed"
	AnalysisCancelled = "cancelled"
)

// Analysis is a laboratory test ordered for an account. Results are free-form
// jsonb filled in when the analysis completes.
type Analysis struct {
	ID           uuid.UUID              `json:"id"`
	AccountID    uuid.UUID              `json:"accountId"`
	LaboratoryID uuid.UUID              `json:"laboratoryId"`
	Type         string                 `json:"type"`
	Results      map[string]interface{} `json:"results,omitempty"`
	Status       string                 `json:"status"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// ImagingReport stores the AI prediction for an uploaded medical image.
type ImagingReport struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	ImagePath string    `json:"imagePath"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateAnalysisRequest orders an analysis.
type CreateAnalysisRequest struct {
	AccountID    string `json:"accountId"`
	LaboratoryID string `json:"laboratoryId"`
	Type         string `json:"type"`
}

func (r *CreateAnalysisRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.AccountID); err != nil {
		fields["accountId"] = "a valid account id is required"
	}
	if _, err := uuid.Parse(r.LaboratoryID); err != nil {
		fields["laboratoryId"] = "a valid laboratory id is required"
	}
	if r.Type == "" {
		fields["type"] = "analysis type is required"
	}
	return fields
}

// UpdateAnalysisRequest closes out an analysis with its results.
type UpdateAnalysisRequest struct {
	Status  string                 `json:"status"`
	Results map[string]interface{} `json:"results"`
}
