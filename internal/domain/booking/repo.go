package booking

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository persists appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// SlotRepository persists availability slots.
type SlotRepository interface {
	Create(ctx context.Context, s *Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	ListByKind(ctx context.Context, kind string, limit, offset int) ([]*Slot, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ProviderProbe reports whether a provider profile exists for an id.
type ProviderProbe interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProviderProbeFunc adapts a function to the ProviderProbe interface.
type ProviderProbeFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f ProviderProbeFunc) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f(ctx, id)
}
