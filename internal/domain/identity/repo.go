package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, limit, offset int) ([]*Account, int, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *PatientProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientProfile, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*PatientProfile, error)
	List(ctx context.Context, limit, offset int) ([]*PatientProfile, int, error)
	Update(ctx context.Context, p *PatientProfile) error
	SetProfilePicture(ctx context.Context, id uuid.UUID, path string) error
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}

type DoctorRepository interface {
	Create(ctx context.Context, d *DoctorProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*DoctorProfile, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*DoctorProfile, error)
	List(ctx context.Context, limit, offset int) ([]*DoctorProfile, int, error)
	Update(ctx context.Context, d *DoctorProfile) error
	SetProfilePicture(ctx context.Context, id uuid.UUID, path string) error
	SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}

type LaboratoryRepository interface {
	Create(ctx context.Context, l *LaboratoryProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*LaboratoryProfile, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*LaboratoryProfile, error)
	List(ctx context.Context, limit, offset int) ([]*LaboratoryProfile, int, error)
	Update(ctx context.Context, l *LaboratoryProfile) error
	SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) error
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}

type ImagingServiceRepository interface {
	Create(ctx context.Context, s *ImagingServiceProfile) error
	GetByID(ctx context.Context, id uuid.UUID) (*ImagingServiceProfile, error)
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*ImagingServiceProfile, error)
	List(ctx context.Context, limit, offset int) ([]*ImagingServiceProfile, int, error)
	Update(ctx context.Context, s *ImagingServiceProfile) error
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}

type AdminRepository interface {
	Create(ctx context.Context, a *AdminProfile) error
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*AdminProfile, error)
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error
}
