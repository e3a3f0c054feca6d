package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is fixed; the clinic bills in Tunisian dinar only.
const Currency = "TND"

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// Payment methods.
var validMethods = map[string]bool{
	"credit_card":   true,
	"debit_card":    true,
	"cash":          true,
	"cnam":          true,
	"bank_transfer": true,
}

func ValidPaymentMethod(method string) bool { return validMethods[method] }

// Payment records a charge against an account, optionally tied to an
// appointment or a consultation.
type Payment struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"accountId"`
	AppointmentID  *uuid.UUID      `json:"appointmentId,omitempty"`
	ConsultationID *uuid.UUID      `json:"consultationId,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Method         string          `json:"method"`
	Status         string          `json:"status"`
	TransactionID  *string         `json:"transactionId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// StatusStatistic is one row of the per-status payment aggregate.
type StatusStatistic struct {
	Status      string          `json:"status"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// CreatePaymentRequest records a payment.
type CreatePaymentRequest struct {
	AccountID      string          `json:"accountId"`
	AppointmentID  string          `json:"appointmentId"`
	ConsultationID string          `json:"consultationId"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	TransactionID  string          `json:"transactionId"`
}

func (r *CreatePaymentRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.AccountID); err != nil {
		fields["accountId"] = "a valid account id is required"
	}
	if r.AppointmentID != "" {
		if _, err := uuid.Parse(r.AppointmentID); err != nil {
			fields["appointmentId"] = "invalid appointment id"
		}
	}
	if r.ConsultationID != "" {
		if _, err := uuid.Parse(r.ConsultationID); err != nil {
			fields["consultationId"] = "invalid consultation id"
		}
	}
	if !r.Amount.IsPositive() {
		fields["amount"] = "amount must be greater than zero"
	}
	if !ValidPaymentMethod(r.Method) {
		fields["method"] = "unknown payment method"
	}
	return fields
}
