package booking

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Provider kinds an appointment can target.
const (
	KindDoctor         = "doctor"
	KindLaboratory     = "laboratory"
	KindImagingService = "imaging_service"
)

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// Availability slot statuses.
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
)

func ValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment links a patient account to exactly one provider. The
// discriminator column matching ServiceKind is the only one set.
type Appointment struct {
	ID               uuid.UUID  `json:"id"`
	PatientID        uuid.UUID  `json:"patientId"`
	ServiceID        uuid.UUID  `json:"serviceId"`
	ServiceKind      string     `json:"serviceKind"`
	DoctorID         *uuid.UUID `json:"doctorId,omitempty"`
	LaboratoryID     *uuid.UUID `json:"laboratoryId,omitempty"`
	ImagingServiceID *uuid.UUID `json:"imagingServiceId,omitempty"`
	Date             time.Time  `json:"date"`
	Time             string     `json:"time"`
	Status           string     `json:"status"`
	Location         string     `json:"location,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Slot is a bookable availability window published by a laboratory or an
// imaging service.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	ServiceID   uuid.UUID `json:"serviceId"`
	ServiceKind string    `json:"serviceKind"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// CreateAppointmentRequest is the booking payload. ServiceKind is optional;
// when empty the provider registry probes each kind in order.
type CreateAppointmentRequest struct {
	PatientID   string `json:"patientId"`
	ServiceID   string `json:"serviceId"`
	ServiceKind string `json:"serviceKind"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
	Location    string `json:"location"`
}

func (r *CreateAppointmentRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.ServiceID); err != nil {
		fields["serviceId"] = "a valid service id is required"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	if !timePattern.MatchString(r.Time) {
		fields["time"] = "time must be HH:MM"
	}
	if r.ServiceKind != "" {
		switch r.ServiceKind {
		case KindDoctor, KindLaboratory, KindImagingService:
		default:
			fields["serviceKind"] = "unknown service kind"
		}
	}
	return fields
}

// CreateSlotRequest publishes an availability window.
type CreateSlotRequest struct {
	ServiceID   string `json:"serviceId"`
	ServiceKind string `json:"serviceKind"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // HH:MM
}

func (r *CreateSlotRequest) Validate() map[string]string {
	fields := map[string]string{}
	if _, err := uuid.Parse(r.ServiceID); err != nil {
		fields["serviceId"] = "a valid service id is required"
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	if !timePattern.MatchString(r.Time) {
		fields["time"] = "time must be HH:MM"
	}
	if r.ServiceKind != "" && r.ServiceKind != KindLaboratory && r.ServiceKind != KindImagingService {
		fields["serviceKind"] = "availability is published by laboratories and imaging services only"
	}
	return fields
}
