package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// Notifier pushes a persisted notification to an account, best effort.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, kind, message string)
}

// Service records payments and serves the admin statistics aggregate.
type Service struct {
	payments     PaymentRepository
	accounts     AccountProbe
	appointments AppointmentProbe
	notifier     Notifier
}

func NewService(payments PaymentRepository, accounts AccountProbe, appointments AppointmentProbe, notifier Notifier) *Service {
	return &Service{payments: payments, accounts: accounts, appointments: appointments, notifier: notifier}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httperr.NotFound(message)
	}
	return httperr.Internal(err)
}

// Create records a pending payment in TND. The account must exist, and so
// must the appointment when one is referenced.
func (s *Service) Create(ctx context.Context, req *CreatePaymentRequest) (*Payment, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}

	accountID := uuid.MustParse(req.AccountID)
	found, err := s.accounts.Exists(ctx, accountID)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if !found {
		return nil, httperr.NotFound("account not found")
	}

	payment := &Payment{
		AccountID: accountID,
		Amount:    req.Amount,
		Currency:  Currency,
		Method:    req.Method,
		Status:    PaymentPending,
	}
	if req.AppointmentID != "" {
		appointmentID := uuid.MustParse(req.AppointmentID)
		found, err := s.appointments.Exists(ctx, appointmentID)
		if err != nil {
			return nil, httperr.Internal(err)
		}
		if !found {
			return nil, httperr.NotFound("appointment not found")
		}
		payment.AppointmentID = &appointmentID
	}
	if req.ConsultationID != "" {
		consultationID := uuid.MustParse(req.ConsultationID)
		payment.ConsultationID = &consultationID
	}
	if req.TransactionID != "" {
		payment.TransactionID = &req.TransactionID
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, httperr.Internal(err)
	}
	s.notifier.Notify(ctx, accountID, "payment",
		fmt.Sprintf("A payment of %s %s has been recorded.", payment.Amount.String(), Currency))
	return payment, nil
}

// ListByAccount returns an account's payments.
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	items, total, err := s.payments.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// UpdateStatus sets a payment's status. There is no gateway reconciliation;
// the status is taken at face value.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Payment, error) {
	if !ValidPaymentStatus(status) {
		return nil, httperr.BadRequest("unknown payment status")
	}
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "payment not found")
	}
	if err := s.payments.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFoundOr(err, "payment not found")
	}
	payment.Status = status
	s.notifier.Notify(ctx, payment.AccountID, "payment",
		fmt.Sprintf("Your payment of %s %s is now %s.", payment.Amount.String(), Currency, status))
	return payment, nil
}

// Statistics aggregates payments per status for the admin dashboard.
func (s *Service) Statistics(ctx context.Context) ([]*StatusStatistic, error) {
	stats, err := s.payments.Statistics(ctx)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return stats, nil
}
