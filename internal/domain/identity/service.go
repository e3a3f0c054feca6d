package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/httperr"
	"github.com/clinichub/clinichub/internal/platform/mailer"
)

const bcryptCost = 10

// profileStore binds a role to its profile table. The registry built in
// NewService is the single place a role is mapped to a store.
type profileStore interface {
	createFromRegistration(ctx context.Context, accountID uuid.UUID, req *RegisterRequest) error
	deleteByAccount(ctx context.Context, accountID uuid.UUID) error
	enrich(ctx context.Context, accountID uuid.UUID, s *UserSummary) error
}

type Service struct {
	accounts  AccountRepository
	patients  PatientRepository
	doctors   DoctorRepository
	labs      LaboratoryRepository
	imaging   ImagingServiceRepository
	admins    AdminRepository
	registry  map[string]profileStore
	tokens    *auth.TokenManager
	mail      mailer.EmailSender
	templates *mailer.TemplateEngine
	adminCode string
	resetURL  string
}

func NewService(
	accounts AccountRepository,
	patients PatientRepository,
	doctors DoctorRepository,
	labs LaboratoryRepository,
	imaging ImagingServiceRepository,
	admins AdminRepository,
	tokens *auth.TokenManager,
	mail mailer.EmailSender,
	templates *mailer.TemplateEngine,
	adminCode, resetURL string,
) *Service {
	s := &Service{
		accounts:  accounts,
		patients:  patients,
		doctors:   doctors,
		labs:      labs,
		imaging:   imaging,
		admins:    admins,
		tokens:    tokens,
		mail:      mail,
		templates: templates,
		adminCode: adminCode,
		resetURL:  resetURL,
	}
	s.registry = map[string]profileStore{
		auth.RolePatient:        &patientStore{repo: patients},
		auth.RoleDoctor:         &doctorStore{repo: doctors},
		auth.RoleLaboratory:     &laboratoryStore{repo: labs},
		auth.RoleImagingService: &imagingStore{repo: imaging},
		auth.RoleAdmin:          &adminStore{repo: admins},
	}
	return s
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return httperr.NotFound(message)
	}
	return httperr.Internal(err)
}

// -- Authentication --

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	fields := req.Validate()
	if req.Role == auth.RoleAdmin && req.AdminCode != s.adminCode {
		fields["adminCode"] = "invalid admin code"
	}
	if len(fields) > 0 {
		return nil, httperr.Validation(fields)
	}

	if _, err := s.accounts.GetByEmail(ctx, req.Email); err == nil {
		return nil, httperr.Conflict("email already in use")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, httperr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, httperr.Internal(err)
	}

	account := &Account{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, httperr.Internal(err)
	}

	// Profile creation failure compensates by removing the account; there
	// is deliberately no cross-table transaction here.
	if err := s.registry[req.Role].createFromRegistration(ctx, account.ID, req); err != nil {
		_ = s.accounts.Delete(ctx, account.ID)
		return nil, httperr.Internal(err)
	}

	token, err := s.tokens.IssueAccessToken(account.ID.String(), account.Email, account.Role)
	if err != nil {
		return nil, httperr.Internal(err)
	}

	return &AuthResult{
		User: &UserSummary{
			ID:        account.ID.String(),
			Email:     account.Email,
			Role:      account.Role,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		Token: token,
	}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	// The error is identical for an unknown email and a wrong password.
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, httperr.Unauthorized("incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, httperr.Unauthorized("incorrect email or password")
	}

	token, err := s.tokens.IssueAccessToken(account.ID.String(), account.Email, account.Role)
	if err != nil {
		return nil, httperr.Internal(err)
	}

	summary := &UserSummary{
		ID:    account.ID.String(),
		Email: account.Email,
		Role:  account.Role,
	}
	if store, ok := s.registry[account.Role]; ok {
		// A missing profile degrades to the bare account summary.
		_ = store.enrich(ctx, account.ID, summary)
	}

	return &AuthResult{User: summary, Token: token}, nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return notFoundOr(err, "account not found")
	}

	token, err := s.tokens.IssueResetToken(account.ID.String(), account.Email)
	if err != nil {
		return httperr.Internal(err)
	}
	expires := time.Now().Add(auth.ResetTokenTTL)
	if err := s.accounts.SetResetToken(ctx, account.ID, token, expires); err != nil {
		return httperr.Internal(err)
	}

	subject, body, err := s.templates.Render("password-reset", map[string]string{
		"reset_link": s.resetURL + "?token=" + token,
	})
	if err != nil {
		return httperr.Internal(err)
	}
	if err := s.mail.SendEmail(ctx, account.Email, subject, body); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return httperr.BadRequest("invalid or expired reset token")
	}
	if !ValidPassword(password) {
		return httperr.Validation(map[string]string{
			"password": "password must be 8+ characters with upper, lower, digit and special",
		})
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return httperr.BadRequest("invalid or expired reset token")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "account not found")
	}

	// The token is single use: it must match the stored one and be cleared
	// once consumed.
	if account.ResetToken == nil || *account.ResetToken != token {
		return httperr.BadRequest("invalid or expired reset token")
	}
	if account.ResetExpires == nil || account.ResetExpires.Before(time.Now()) {
		return httperr.BadRequest("invalid or expired reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return httperr.Internal(err)
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return httperr.Internal(err)
	}
	if err := s.accounts.ClearResetToken(ctx, account.ID); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", httperr.Unauthorized("invalid token")
	}
	fresh, err := s.tokens.IssueAccessToken(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return "", httperr.Internal(err)
	}
	return fresh, nil
}

func (s *Service) ValidateAdminCode(code string) bool {
	return s.adminCode != "" && code == s.adminCode
}

// Me returns the profile-enriched summary for the authenticated account.
func (s *Service) Me(ctx context.Context, accountID string) (*UserSummary, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, httperr.Unauthorized("invalid token subject")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "account not found")
	}
	summary := &UserSummary{
		ID:    account.ID.String(),
		Email: account.Email,
		Role:  account.Role,
	}
	if store, ok := s.registry[account.Role]; ok {
		_ = store.enrich(ctx, account.ID, summary)
	}
	return summary, nil
}

// -- Account administration --

func (s *Service) ListAccounts(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	accounts, total, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return accounts, total, nil
}

func (s *Service) DeleteAccount(ctx context.Context, requesterID string, id uuid.UUID) error {
	if requesterID == id.String() {
		return httperr.Forbidden("you cannot delete your own account")
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "account not found")
	}
	if store, ok := s.registry[account.Role]; ok {
		if err := store.deleteByAccount(ctx, account.ID); err != nil {
			return httperr.Internal(err)
		}
	}
	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) UpdateAccountRole(ctx context.Context, id uuid.UUID, role string) error {
	if !auth.ValidRole(role) {
		return httperr.Validation(map[string]string{"role": "invalid role"})
	}
	if _, err := s.accounts.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "account not found")
	}
	if err := s.accounts.UpdateRole(ctx, id, role); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// -- Profiles --

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*PatientProfile, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "patient not found")
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*PatientProfile, int, error) {
	items, total, err := s.patients.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *PatientProfile) error {
	current, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return notFoundOr(err, "patient not found")
	}
	p.AccountID = current.AccountID
	if err := s.patients.Update(ctx, p); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// DeletePatient removes the profile and its account.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "patient not found")
	}
	if err := s.patients.DeleteByAccount(ctx, p.AccountID); err != nil {
		return httperr.Internal(err)
	}
	if err := s.accounts.Delete(ctx, p.AccountID); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*DoctorProfile, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "doctor not found")
	}
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*DoctorProfile, int, error) {
	items, total, err := s.doctors.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, d *DoctorProfile) error {
	current, err := s.doctors.GetByID(ctx, d.ID)
	if err != nil {
		return notFoundOr(err, "doctor not found")
	}
	d.AccountID = current.AccountID
	if err := s.doctors.Update(ctx, d); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) GetLaboratory(ctx context.Context, id uuid.UUID) (*LaboratoryProfile, error) {
	l, err := s.labs.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "laboratory not found")
	}
	return l, nil
}

func (s *Service) ListLaboratories(ctx context.Context, limit, offset int) ([]*LaboratoryProfile, int, error) {
	items, total, err := s.labs.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

func (s *Service) UpdateLaboratory(ctx context.Context, l *LaboratoryProfile) error {
	current, err := s.labs.GetByID(ctx, l.ID)
	if err != nil {
		return notFoundOr(err, "laboratory not found")
	}
	l.AccountID = current.AccountID
	if err := s.labs.Update(ctx, l); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (s *Service) GetImagingService(ctx context.Context, id uuid.UUID) (*ImagingServiceProfile, error) {
	i, err := s.imaging.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "imaging service not found")
	}
	return i, nil
}

func (s *Service) ListImagingServices(ctx context.Context, limit, offset int) ([]*ImagingServiceProfile, int, error) {
	items, total, err := s.imaging.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, httperr.Internal(err)
	}
	return items, total, nil
}

func (s *Service) UpdateImagingService(ctx context.Context, i *ImagingServiceProfile) error {
	current, err := s.imaging.GetByID(ctx, i.ID)
	if err != nil {
		return notFoundOr(err, "imaging service not found")
	}
	i.AccountID = current.AccountID
	if err := s.imaging.Update(ctx, i); err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// SetVerificationStatus moves a doctor or laboratory through the
// pending/verified/rejected states.
func (s *Service) SetVerificationStatus(ctx context.Context, kind string, id uuid.UUID, status string) error {
	if !ValidVerificationStatus(status) {
		return httperr.Validation(map[string]string{"status": "invalid verification status"})
	}
	switch kind {
	case auth.RoleDoctor:
		if _, err := s.doctors.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "doctor not found")
		}
		if err := s.doctors.SetVerificationStatus(ctx, id, status); err != nil {
			return httperr.Internal(err)
		}
	case auth.RoleLaboratory:
		if _, err := s.labs.GetByID(ctx, id); err != nil {
			return notFoundOr(err, "laboratory not found")
		}
		if err := s.labs.SetVerificationStatus(ctx, id, status); err != nil {
			return httperr.Internal(err)
		}
	default:
		return httperr.BadRequest("verification applies to doctors and laboratories only")
	}
	return nil
}

// -- Profile pictures --

// UpdateProfilePicture records the stored file for a profile and returns the
// previous one so the caller can delete it from disk.
func (s *Service) UpdateProfilePicture(ctx context.Context, kind string, id uuid.UUID, stored string) (string, error) {
	switch kind {
	case auth.RoleDoctor:
		d, err := s.doctors.GetByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "doctor not found")
		}
		if err := s.doctors.SetProfilePicture(ctx, id, stored); err != nil {
			return "", httperr.Internal(err)
		}
		return d.ProfilePicture, nil
	case auth.RolePatient:
		p, err := s.patients.GetByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "patient not found")
		}
		if err := s.patients.SetProfilePicture(ctx, id, stored); err != nil {
			return "", httperr.Internal(err)
		}
		return p.ProfilePicture, nil
	}
	return "", httperr.BadRequest("profile pictures are supported for doctors and patients only")
}

// ProfilePicture returns the stored file name for a profile.
func (s *Service) ProfilePicture(ctx context.Context, kind string, id uuid.UUID) (string, error) {
	switch kind {
	case auth.RoleDoctor:
		d, err := s.doctors.GetByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "doctor not found")
		}
		if d.ProfilePicture == "" {
			return "", httperr.NotFound("no profile picture")
		}
		return d.ProfilePicture, nil
	case auth.RolePatient:
		p, err := s.patients.GetByID(ctx, id)
		if err != nil {
			return "", notFoundOr(err, "patient not found")
		}
		if p.ProfilePicture == "" {
			return "", httperr.NotFound("no profile picture")
		}
		return p.ProfilePicture, nil
	}
	return "", httperr.BadRequest("profile pictures are supported for doctors and patients only")
}

// -- Profile stores --

type patientStore struct{ repo PatientRepository }

func (ps *patientStore) createFromRegistration(ctx context.Context, accountID uuid.UUID, req *RegisterRequest) error {
	p := &PatientProfile{
		AccountID:    accountID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		FatherName:   req.FatherName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		IsCnamMember: req.IsCnamMember,
		CnamFileID:   req.CnamFileID,
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err == nil {
			p.DOB = &dob
		}
	}
	return ps.repo.Create(ctx, p)
}

func (ps *patientStore) deleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return ps.repo.DeleteByAccount(ctx, accountID)
}

func (ps *patientStore) enrich(ctx context.Context, accountID uuid.UUID, s *UserSummary) error {
	p, err := ps.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	s.FirstName = p.FirstName
	s.LastName = p.LastName
	s.FatherName = p.FatherName
	s.Phone = p.Phone
	s.Address = p.Address
	s.IsCnamMember = p.IsCnamMember
	s.CnamFileID = p.CnamFileID
	s.ProfilePicture = p.ProfilePicture
	if p.DOB != nil {
		s.DOB = p.DOB.Format("2006-01-02")
	}
	return nil
}

type doctorStore struct{ repo DoctorRepository }

func (ds *doctorStore) createFromRegistration(ctx context.Context, accountID uuid.UUID, req *RegisterRequest) error {
	return ds.repo.Create(ctx, &DoctorProfile{
		AccountID:          accountID,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		Specialty:          req.Specialty,
		LicenseNumber:      req.LicenseNumber,
		Hospital:           req.Hospital,
		VerificationStatus: VerificationPending,
	})
}

func (ds *doctorStore) deleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return ds.repo.DeleteByAccount(ctx, accountID)
}

func (ds *doctorStore) enrich(ctx context.Context, accountID uuid.UUID, s *UserSummary) error {
	d, err := ds.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	s.FirstName = d.FirstName
	s.LastName = d.LastName
	s.Phone = d.Phone
	s.Address = d.Address
	s.Specialty = d.Specialty
	s.LicenseNumber = d.LicenseNumber
	s.Hospital = d.Hospital
	s.VerificationStatus = d.VerificationStatus
	s.ProfilePicture = d.ProfilePicture
	return nil
}

type laboratoryStore struct{ repo LaboratoryRepository }

func (ls *laboratoryStore) createFromRegistration(ctx context.Context, accountID uuid.UUID, req *RegisterRequest) error {
	return ls.repo.Create(ctx, &LaboratoryProfile{
		AccountID:          accountID,
		Name:               req.OrgName(),
		Email:              req.Email,
		Phone:              req.Phone,
		Address:            req.Address,
		Services:           req.Services,
		LicenseNumber:      req.LicenseNumber,
		VerificationStatus: VerificationPending,
	})
}

func (ls *laboratoryStore) deleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return ls.repo.DeleteByAccount(ctx, accountID)
}

func (ls *laboratoryStore) enrich(ctx context.Context, accountID uuid.UUID, s *UserSummary) error {
	l, err := ls.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	s.Name = l.Name
	s.Phone = l.Phone
	s.Address = l.Address
	s.Services = l.Services
	s.LicenseNumber = l.LicenseNumber
	s.VerificationStatus = l.VerificationStatus
	s.ProfilePicture = l.ProfilePicture
	return nil
}

type imagingStore struct{ repo ImagingServiceRepository }

func (is *imagingStore) createFromRegistration(ctx context.Context, accountID uuid.UUID, req *RegisterRequest) error {
	return is.repo.Create(ctx, &ImagingServiceProfile{
		AccountID: accountID,
		Name:      req.OrgName(),
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Services:  req.Services,
	})
}

func (is *imagingStore) deleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return is.repo.DeleteByAccount(ctx, accountID)
}

func (is *imagingStore) enrich(ctx context.Context, accountID uuid.UUID, s *UserSummary) error {
	i, err := is.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	s.Name = i.Name
	s.Phone = i.Phone
	s.Address = i.Address
	s.Services = i.Services
	s.ProfilePicture = i.ProfilePicture
	return nil
}

type adminStore struct{ repo AdminRepository }

func (as *adminStore) createFromRegistration(ctx context.Context, accountID uuid.UUID, req *RegisterRequest) error {
	return as.repo.Create(ctx, &AdminProfile{
		AccountID: accountID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
}

func (as *adminStore) deleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	return as.repo.DeleteByAccount(ctx, accountID)
}

func (as *adminStore) enrich(ctx context.Context, accountID uuid.UUID, s *UserSummary) error {
	a, err := as.repo.GetByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	s.FirstName = a.FirstName
	s.LastName = a.LastName
	return nil
}
