package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification kinds mirror the domains that emit them.
const (
	KindAppointment  = "appointment"
	KindConsultation = "consultation"
	KindPayment      = "payment"
	KindAnalysis     = "analysis"
	KindImaging      = "imaging"
)

func ValidKind(kind string) bool {
	switch kind {
	case KindAppointment, KindConsultation, KindPayment, KindAnalysis, KindImaging:
		return true
	}
	return false
}

// Notification is a persisted per-account message.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateRequest posts a notification to an account.
type CreateRequest struct {
	AccountID string `json:"accountId"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
}

func (r *CreateRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.AccountID); err != nil {
		fields["accountId"] = "a valid account id is required"
	}
	if r.Message == "" {
		fields["message"] = "message is required"
	}
	if !ValidKind(r.Kind) {
		fields["kind"] = "unknown notification kind"
	}
	return fields
}
