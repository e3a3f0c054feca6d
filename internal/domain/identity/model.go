package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

// Verification statuses for provider profiles.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

func ValidVerificationStatus(status string) bool {
	switch status {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// Account is the credential record shared by every role. The password hash
// and reset fields never serialize.
type Account struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	ResetToken   *string    `json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type PatientProfile struct {
	ID             uuid.UUID  `json:"id"`
	AccountID      uuid.UUID  `json:"accountId"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	FatherName     string     `json:"fatherName,omitempty"`
	DOB            *time.Time `json:"dob,omitempty"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	IsCnamMember   bool       `json:"isCnamMember"`
	CnamFileID     string     `json:"cnamFileId,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type DoctorProfile struct {
	ID                 uuid.UUID `json:"id"`
	AccountID          uuid.UUID `json:"accountId"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	Specialty          string    `json:"specialty,omitempty"`
	LicenseNumber      string    `json:"licenseNumber,omitempty"`
	Hospital           string    `json:"hospital,omitempty"`
	VerificationStatus string    `json:"verificationStatus"`
	ProfilePicture     string    `json:"profilePicture,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type LaboratoryProfile struct {
	ID                 uuid.UUID `json:"id"`
	AccountID          uuid.UUID `json:"accountId"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	Services           []string  `json:"services"`
	LicenseNumber      string    `json:"licenseNumber,omitempty"`
	VerificationStatus string    `json:"verificationStatus"`
	ProfilePicture     string    `json:"profilePicture,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ImagingServiceProfile struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"accountId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Services       []string  `json:"services"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type AdminProfile struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterRequest carries the union of registration fields; role decides
// which ones the profile store picks up.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	AdminCode string `json:"adminCode"`

	// patient
	FatherName   string `json:"fatherName"`
	DOB          string `json:"dob"` // YYYY-MM-DD
	IsCnamMember bool   `json:"isCnamMember"`
	CnamFileID   string `json:"cnamFileId"`

	// doctor
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"licenseNumber"`
	Hospital      string `json:"hospital"`

	// laboratory / imaging_service
	Services []string `json:"services"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+\d{1,4}\d{8,}$`)
)

// ValidPassword requires at least 8 characters with a lowercase letter, an
// uppercase letter, a digit and a special character.
func ValidPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&#^()[]{}_-+=.,;:", r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// Validate returns field-level errors, empty when the request is acceptable.
func (r *RegisterRequest) Validate() map[string]string {
	fields := map[string]string{}

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)

	if !emailPattern.MatchString(r.Email) {
		fields["email"] = "invalid email"
	}
	if !ValidPassword(r.Password) {
		fields["password"] = "password must be 8+ characters with upper, lower, digit and special"
	}
	if !auth.ValidRole(r.Role) {
		fields["role"] = "invalid role"
	}
	if r.FirstName == "" {
		fields["firstName"] = "first name is required"
	} else if len(r.FirstName) > 50 {
		fields["firstName"] = "first name must be at most 50 characters"
	}
	if r.LastName == "" {
		fields["lastName"] = "last name is required"
	} else if len(r.LastName) > 50 {
		fields["lastName"] = "last name must be at most 50 characters"
	}
	if r.Phone != "" && !phonePattern.MatchString(r.Phone) {
		fields["phone"] = "invalid phone format"
	}
	if len(r.Address) > 255 {
		fields["address"] = "address must be at most 255 characters"
	}
	if r.DOB != "" {
		if _, err := time.Parse("2006-01-02", r.DOB); err != nil {
			fields["dob"] = "date of birth must be YYYY-MM-DD"
		}
	}
	return fields
}

// OrgName is the display name used for laboratory and imaging profiles.
func (r *RegisterRequest) OrgName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// UserSummary is the profile-enriched account view returned by auth
// endpoints. Empty optional fields are omitted.
type UserSummary struct {
	ID                 string   `json:"id"`
	Email              string   `json:"email"`
	Role               string   `json:"role"`
	FirstName          string   `json:"firstName,omitempty"`
	LastName           string   `json:"lastName,omitempty"`
	Name               string   `json:"name,omitempty"`
	Phone              string   `json:"phone,omitempty"`
	Address            string   `json:"address,omitempty"`
	FatherName         string   `json:"fatherName,omitempty"`
	DOB                string   `json:"dob,omitempty"`
	IsCnamMember       bool     `json:"isCnamMember,omitempty"`
	CnamFileID         string   `json:"cnamFileId,omitempty"`
	Specialty          string   `json:"specialty,omitempty"`
	LicenseNumber      string   `json:"licenseNumber,omitempty"`
	Hospital           string   `json:"hospital,omitempty"`
	Services           []string `json:"services,omitempty"`
	VerificationStatus string   `json:"verificationStatus,omitempty"`
	ProfilePicture     string   `json:"profilePicture,omitempty"`
}

// AuthResult is the login/registration payload.
type AuthResult struct {
	User  *UserSummary `json:"user"`
	Token string       `json:"token"`
}
