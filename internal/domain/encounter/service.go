package encounter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// Notifier pushes a persisted notification to an account, best effort.
type Notifier interface {
	Notify(ctx context.Context, accountID uuid.UUID, kind, message string)
}

// Service implements consultations and prescriptions.
type Service struct {
	consultations ConsultationRepository
	prescriptions PrescriptionRepository
	appointments  AppointmentProbe
	notifier      Notifier
}

func NewService(consultations ConsultationRepository, prescriptions PrescriptionRepository, appointments AppointmentProbe, notifier Notifier) *Service {
	return &Service{
		consultations: consultations,
		prescriptions: prescriptions,
		appointments:  appointments,
		notifier:      notifier,
	}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httperr.NotFound(message)
	}
	return httperr.Internal(err)
}

// CreateConsultation schedules a consultation. The referenced appointment
// must already exist.
func (s *Service) CreateConsultation(ctx context.Context, req *CreateConsultationRequest) (*Consultation, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}
	appointmentID := uuid.MustParse(req.AppointmentID)
	found, err := s.appointments.Exists(ctx, appointmentID)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	if !found {
		return nil, httperr.NotFound("appointment not found")
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	cons := &Consultation{
		PatientID:     uuid.MustParse(req.PatientID),
		DoctorID:      uuid.MustParse(req.DoctorID),
		AppointmentID: appointmentID,
		Date:          date,
		Time:          req.Time,
		Status:        ConsultationScheduled,
	}
	if err := s.consultations.Create(ctx, cons); err != nil {
		return nil, httperr.Internal(err)
	}
	s.notifier.Notify(ctx, cons.PatientID, "consultation",
		fmt.Sprintf("A consultation has been scheduled for %s at %s.", req.Date, req.Time))
	return cons, nil
}

// Get returns one consultation.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	cons, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	return cons, nil
}

// List returns consultations scoped by the caller's role: patients and
// doctors see their own, admins see everything.
func (s *Service) List(ctx context.Context, requesterID, role string, limit, offset int) ([]*Consultation, int, error) {
	if role == auth.RoleAdmin {
		items, total, err := s.consultations.List(ctx, limit, offset)
		if err != nil {
			return nil, 0, httperr.Internal(err)
		}
		return items, total, nil
	}

	accountID, err := uuid.Parse(requesterID)
	if err != nil {
		return nil, 0, httperr.Unauthorized("invalid token subject")
	}
	var items []*Consultation
	var total int
	switch role {
	case auth.RolePatient:
		items, total, err = s.consultations.ListByPatient(ctx, accountID, limit, offset)
	case auth.RoleDoctor:
		items, total, err = s.consultations.ListByDoctor(ctx, accountID, limit, offset)
	default:
		return nil, 0, httperr.Forbidden("role cannot list consultations")
	}
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// StartVideo moves a scheduled consultation to in-progress and assigns its
// video room id.
func (s *Service) StartVideo(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	cons, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	if cons.Status != ConsultationScheduled {
		return nil, httperr.BadRequest(
			fmt.Sprintf("cannot start video for a %s consultation", cons.Status))
	}
	roomID := "room-" + cons.ID.String()
	if err := s.consultations.StartVideo(ctx, id, roomID); err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	cons.Status = ConsultationInProgress
	cons.VideoRoomID = roomID
	return cons, nil
}

// EndVideo completes an in-progress consultation.
func (s *Service) EndVideo(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	cons, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	if cons.Status != ConsultationInProgress {
		return nil, httperr.BadRequest("no video session is in progress")
	}
	return s.complete(ctx, cons)
}

// Validate marks a consultation completed without requiring a video session.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	cons, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	if cons.Status == ConsultationCompleted || cons.Status == ConsultationCancelled {
		return nil, httperr.BadRequest(
			fmt.Sprintf("cannot validate a %s consultation", cons.Status))
	}
	return s.complete(ctx, cons)
}

func (s *Service) complete(ctx context.Context, cons *Consultation) (*Consultation, error) {
	if err := s.consultations.UpdateStatus(ctx, cons.ID, ConsultationCompleted); err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	cons.Status = ConsultationCompleted
	s.notifier.Notify(ctx, cons.PatientID, "consultation", "Your consultation has been completed.")
	return cons, nil
}

// Cancel cancels a consultation from any state.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	cons, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	if err := s.consultations.UpdateStatus(ctx, id, ConsultationCancelled); err != nil {
		return nil, notFoundOr(err, "consultation not found")
	}
	cons.Status = ConsultationCancelled
	s.notifier.Notify(ctx, cons.PatientID, "consultation", "Your consultation has been cancelled.")
	return cons, nil
}

// CreatePrescription issues a prescription signed by the requesting doctor.
func (s *Service) CreatePrescription(ctx context.Context, doctorID string, req *CreatePrescriptionRequest) (*Prescription, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}
	doctor, err := uuid.Parse(doctorID)
	if err != nil {
		return nil, httperr.Unauthorized("invalid token subject")
	}

	presc := &Prescription{
		PatientID:      uuid.MustParse(req.PatientID),
		DoctorID:       doctor,
		ConsultationID: uuid.MustParse(req.ConsultationID),
		Medications:    req.Medications,
		Instructions:   req.Instructions,
		Status:         PrescriptionSent,
	}
	if err := s.prescriptions.Create(ctx, presc); err != nil {
		return nil, httperr.Internal(err)
	}
	return presc, nil
}

// PrescriptionsByPatient lists a patient's prescriptions.
func (s *Service) PrescriptionsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	items, total, err := s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

// UpdatePrescriptionStatus moves a prescription to filled or cancelled.
func (s *Service) UpdatePrescriptionStatus(ctx context.Context, id uuid.UUID, status string) (*Prescription, error) {
	if status != PrescriptionFilled && status != PrescriptionCancelled {
		return nil, httperr.BadRequest("status must be filled or cancelled")
	}
	presc, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "prescription not found")
	}
	if err := s.prescriptions.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFoundOr(err, "prescription not found")
	}
	presc.Status = status
	return presc, nil
}
