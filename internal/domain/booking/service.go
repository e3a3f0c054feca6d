package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// Notifier pushes a persisted notification to an account. Delivery is best
// effort; booking never fails on a notification error.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, kind, message string)
}

// Service implements appointment booking and availability publishing.
type Service struct {
	appointments AppointmentRepository
	slots        SlotRepository
	registry     *ProviderRegistry
	notifier     Notifier
}

func NewService(appointments AppointmentRepository, slots SlotRepository, registry *ProviderRegistry, notifier Notifier) *Service {
	return &Service{appointments: appointments, slots: slots, registry: registry, notifier: notifier}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httperr.NotFound(message)
	}
	return httperr.Internal(err)
}

// CreateAppointment books an appointment for the requesting patient. The
// provider kind is resolved through the registry and exactly one
// discriminator id is set before persistence.
func (s *Service) CreateAppointment(ctx context.Context, requesterID string, req *CreateAppointmentRequest) (*Appointment, error) {
	if req.PatientID != "" && req.PatientID != requesterID {
		return nil, httperr.Forbidden("patients can only book for themselves")
	}
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}

	patientID, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, httperr.Unauthorized("invalid token subject")
	}
	serviceID := uuid.MustParse(req.ServiceID)

	kind, err := s.registry.Resolve(ctx, serviceID, req.ServiceKind)
	if err != nil {
		return nil, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	appt := &Appointment{
		PatientID:   patientID,
		ServiceID:   serviceID,
		ServiceKind: kind,
		Date:        date,
		Time:        req.Time,
		Status:      AppointmentPending,
		Location:    req.Location,
	}
	switch kind {
	case KindDoctor:
		appt.DoctorID = &serviceID
	case KindLaboratory:
		appt.LaboratoryID = &serviceID
	case KindImagingService:
		appt.ImagingServiceID = &serviceID
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, httperr.Internal(err)
	}
	s.notifier.Notify(ctx, patientID, "appointment",
		fmt.Sprintf("Your appointment on %s at %s is pending confirmation.", req.Date, req.Time))
	return appt, nil
}

// History lists the patient's own appointments, optionally filtered by status.
func (s *Service) History(ctx context.Context, requesterID, status string, limit, offset int) ([]*Appointment, int, error) {
	patientID, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, 0, httperr.Unauthorized("invalid token subject")
	}
	if status != "" && !ValidAppointmentStatus(status) {
		return nil, 0, httperr.BadRequest("unknown appointment status")
	}
	items, total, err := s.appointments.ListByPatient(ctx, patientID, status, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// ListByProvider lists appointments targeting a provider id.
func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.appointments.ListByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// allowedTransitions maps a current appointment status to the statuses it may
// move to. Cancellation is reachable from every state.
var allowedTransitions = map[string]map[string]bool{
	AppointmentPending:   {AppointmentConfirmed: true, AppointmentCancelled: true},
	AppointmentConfirmed: {AppointmentCompleted: true, AppointmentCancelled: true},
	AppointmentCompleted: {AppointmentCancelled: true},
	AppointmentCancelled: {},
}

// UpdateStatus moves an appointment along pending -> confirmed -> completed,
// or cancels it from any state.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !ValidAppointmentStatus(status) {
		return nil, httperr.BadRequest("unknown appointment status")
	}
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}
	if !allowedTransitions[appt.Status][status] {
		return nil, httperr.BadRequest(
			fmt.Sprintf("cannot move appointment from %s to %s", appt.Status, status))
	}
	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFoundOr(err, "appointment not found")
	}
	appt.Status = status
	s.notifier.Notify(ctx, appt.PatientID, "appointment",
		fmt.Sprintf("Your appointment on %s at %s is now %s.", appt.Date.Format("2006-01-02"), appt.Time, status))
	return appt, nil
}

// CreateSlot publishes an availability window for a laboratory or imaging
// service. The registry resolution is restricted to the two slot-publishing
// kinds.
func (s *Service) CreateSlot(ctx context.Context, req *CreateSlotRequest) (*Slot, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}
	serviceID := uuid.MustParse(req.ServiceID)

	kind, err := s.registry.Resolve(ctx, serviceID, req.ServiceKind)
	if err != nil {
		return nil, err
	}
	if kind != KindLaboratory && kind != KindImagingService {
		return nil, httperr.BadRequest("availability is published by laboratories and imaging services only")
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	slot := &Slot{
		ServiceID:   serviceID,
		ServiceKind: kind,
		Date:        date,
		Time:        req.Time,
		Status:      SlotAvailable,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, httperr.Internal(err)
	}
	return slot, nil
}

// ListSlots lists the published slots of every provider of the given kind.
func (s *Service) ListSlots(ctx context.Context, kind string, limit, offset int) ([]*Slot, int, error) {
	if kind != KindLaboratory && kind != KindImagingService {
		return nil, 0, httperr.BadRequest("availability exists for laboratories and imaging services only")
	}
	items, total, err := s.slots.ListByKind(ctx, kind, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// BookSlot marks an available slot as booked.
func (s *Service) BookSlot(ctx context.Context, id uuid.UUID) (*Slot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "availability slot not found")
	}
	if slot.Status == SlotBooked {
		return nil, httperr.Conflict("slot is already booked")
	}
	if err := s.slots.UpdateStatus(ctx, id, SlotBooked); err != nil {
		return nil, notFoundOr(err, "availability slot not found")
	}
	slot.Status = SlotBooked
	return slot, nil
}
