package billing

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository persists payments and serves the admin aggregate.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Payment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Statistics(ctx context.Context) ([]*StatusStatistic, error)
}

// AccountProbe reports whether an account exists.
type AccountProbe interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AppointmentProbe reports whether an appointment exists.
type AppointmentProbe interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProbeFunc adapts a function to the probe interfaces.
type ProbeFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f ProbeFunc) Exists(ctx context.Context, id uuid.UUID) (bool, error) { return f(ctx, id) }
