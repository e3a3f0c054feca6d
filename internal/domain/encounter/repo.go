package encounter

import (
	"context"

	"github.com/google/uuid"
)

// ConsultationRepository persists consultations.
type ConsultationRepository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Consultation, int, error)
	List(ctx context.Context, limit, offset int) ([]*Consultation, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	StartVideo(ctx context.Context, id uuid.UUID, roomID string) error
}

// PrescriptionRepository persists prescriptions.
type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// AppointmentProbe reports whether an appointment exists. Consultations can
// only be scheduled against one that does.
type AppointmentProbe interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AppointmentProbeFunc adapts a function to the AppointmentProbe interface.
type AppointmentProbeFunc func(ctx context.Context, id uuid.UUID) (bool, error)

func (f AppointmentProbeFunc) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f(ctx, id)
}
