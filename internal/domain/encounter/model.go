package encounter

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Consultation statuses.
const (
	ConsultationScheduled  = "scheduled"
	ConsultationInProgress = "in-progress"
	ConsultationCompleted  = "completed"
	ConsultationCancelled  = "cancelled"
)

// Prescription statuses.
const (
	PrescriptionSent      = "sent"
	PrescriptionFilled    = "filled"
	PrescriptionCancelled = "cancelled"
)

// Consultation is a doctor/patient encounter tied to an existing appointment.
// VideoRoomID is assigned when the video session starts.
type Consultation struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patientId"`
	DoctorID      uuid.UUID `json:"doctorId"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	VideoRoomID   string    `json:"videoRoomId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Medication is one line of a prescription. All four fields are required.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription carries an ordered medication list stored as jsonb.
type Prescription struct {
	ID             uuid.UUID    `json:"id"`
	PatientID      uuid.UUID    `json:"patientId"`
	DoctorID       uuid.UUID    `json:"doctorId"`
	ConsultationID uuid.UUID    `json:"consultationId"`
	Medications    []Medication `json:"medications"`
	Instructions   string       `json:"instructions,omitempty"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// CreateConsultationRequest schedules a consultation against an appointment.
type CreateConsultationRequest struct {
	PatientID     string `json:"patientId"`
	DoctorID      string `json:"doctorId"`
	AppointmentID string `json:"appointmentId"`
	Date          string `json:"date"` // YYYY-MM-DD
	Time          string `json:"time"` // HH:MM
}

func (r *CreateConsultationRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.PatientID); err != nil {
		fields["patientId"] = "a valid patient id is required"
	}
	if _, err := uuid.Parse(r.DoctorID); err != nil {
		fields["doctorId"] = "a valid doctor id is required"
	}
	if _, err := uuid.Parse(r.AppointmentID); err != nil {
		fields["appointmentId"] = "a valid appointment id is required"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	if !timePattern.MatchString(r.Time) {
		fields["time"] = "time must be HH:MM"
	}
	return fields
}

// CreatePrescriptionRequest issues a prescription during a consultation.
type CreatePrescriptionRequest struct {
	PatientID      string       `json:"patientId"`
	ConsultationID string       `json:"consultationId"`
	Medications    []Medication `json:"medications"`
	Instructions   string       `json:"instructions"`
}

func (r *CreatePrescriptionRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.PatientID); err != nil {
		fields["patientId"] = "a valid patient id is required"
	}
	if _, err := uuid.Parse(r.ConsultationID); err != nil {
		fields["consultationId"] = "a valid consultation id is required"
	}
	if len(r.Medications) == 0 {
		fields["medications"] = "at least one medication is required"
	}
	for _, m := range r.Medications {
		if m.Name == "" || m.Dosage == "" || m.Frequency == "" || m.Duration == "" {
			fields["medications"] = "every medication needs name, dosage, frequency and duration"
			break
		}
	}
	return fields
}
