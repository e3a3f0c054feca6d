package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/httperr"
	"github.com/clinichub/clinichub/internal/platform/mailer"
)

// -- Mock Account Repository --

type mockAccountRepo struct {
	accounts   map[uuid.UUID]*Account
	failCreate bool
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[uuid.UUID]*Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, a *Account) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAccountRepo) List(_ context.Context, limit, offset int) ([]*Account, int, error) {
	var result []*Account
	for _, a := range m.accounts {
		result = append(result, a)
	}
	return result, len(result), nil
}

func (m *mockAccountRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	if a, ok := m.accounts[id]; ok {
		a.PasswordHash = hash
	}
	return nil
}

func (m *mockAccountRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	if a, ok := m.accounts[id]; ok {
		a.Role = role
	}
	return nil
}

func (m *mockAccountRepo) SetResetToken(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	if a, ok := m.accounts[id]; ok {
		a.ResetToken = &token
		a.ResetExpires = &expires
	}
	return nil
}

func (m *mockAccountRepo) ClearResetToken(_ context.Context, id uuid.UUID) error {
	if a, ok := m.accounts[id]; ok {
		a.ResetToken = nil
		a.ResetExpires = nil
	}
	return nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.accounts, id)
	return nil
}

// -- Mock Patient Repository --

type mockPatientRepo struct {
	patients   map[uuid.UUID]*PatientProfile
	failCreate bool
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[uuid.UUID]*PatientProfile)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *PatientProfile) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*PatientProfile, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (m *mockPatientRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*PatientProfile, error) {
	for _, p := range m.patients {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockPatientRepo) List(_ context.Context, limit, offset int) ([]*PatientProfile, int, error) {
	var result []*PatientProfile
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *PatientProfile) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) SetProfilePicture(_ context.Context, id uuid.UUID, path string) error {
	if p, ok := m.patients[id]; ok {
		p.ProfilePicture = path
	}
	return nil
}

func (m *mockPatientRepo) DeleteByAccount(_ context.Context, accountID uuid.UUID) error {
	for id, p := range m.patients {
		if p.AccountID == accountID {
			delete(m.patients, id)
		}
	}
	return nil
}

// -- Mock Doctor Repository --

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*DoctorProfile
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*DoctorProfile)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *DoctorProfile) error {
	d.ID = uuid.New()
	if d.VerificationStatus == "" {
		d.VerificationStatus = VerificationPending
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*DoctorProfile, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (m *mockDoctorRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*DoctorProfile, error) {
	for _, d := range m.doctors {
		if d.AccountID == accountID {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*DoctorProfile, int, error) {
	var result []*DoctorProfile
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *DoctorProfile) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) SetProfilePicture(_ context.Context, id uuid.UUID, path string) error {
	if d, ok := m.doctors[id]; ok {
		d.ProfilePicture = path
	}
	return nil
}

func (m *mockDoctorRepo) SetVerificationStatus(_ context.Context, id uuid.UUID, status string) error {
	if d, ok := m.doctors[id]; ok {
		d.VerificationStatus = status
	}
	return nil
}

func (m *mockDoctorRepo) DeleteByAccount(_ context.Context, accountID uuid.UUID) error {
	for id, d := range m.doctors {
		if d.AccountID == accountID {
			delete(m.doctors, id)
		}
	}
	return nil
}

// -- Mock Laboratory Repository --

type mockLaboratoryRepo struct {
	labs map[uuid.UUID]*LaboratoryProfile
}

func newMockLaboratoryRepo() *mockLaboratoryRepo {
	return &mockLaboratoryRepo{labs: make(map[uuid.UUID]*LaboratoryProfile)}
}

func (m *mockLaboratoryRepo) Create(_ context.Context, l *LaboratoryProfile) error {
	l.ID = uuid.New()
	if l.VerificationStatus == "" {
		l.VerificationStatus = VerificationPending
	}
	l.CreatedAt = time.Now()
	l.UpdatedAt = time.Now()
	m.labs[l.ID] = l
	return nil
}

func (m *mockLaboratoryRepo) GetByID(_ context.Context, id uuid.UUID) (*LaboratoryProfile, error) {
	l, ok := m.labs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return l, nil
}

func (m *mockLaboratoryRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*LaboratoryProfile, error) {
	for _, l := range m.labs {
		if l.AccountID == accountID {
			return l, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockLaboratoryRepo) List(_ context.Context, limit, offset int) ([]*LaboratoryProfile, int, error) {
	var result []*LaboratoryProfile
	for _, l := range m.labs {
		result = append(result, l)
	}
	return result, len(result), nil
}

func (m *mockLaboratoryRepo) Update(_ context.Context, l *LaboratoryProfile) error {
	m.labs[l.ID] = l
	return nil
}

func (m *mockLaboratoryRepo) SetVerificationStatus(_ context.Context, id uuid.UUID, status string) error {
	if l, ok := m.labs[id]; ok {
		l.VerificationStatus = status
	}
	return nil
}

func (m *mockLaboratoryRepo) DeleteByAccount(_ context.Context, accountID uuid.UUID) error {
	for id, l := range m.labs {
		if l.AccountID == accountID {
			delete(m.labs, id)
		}
	}
	return nil
}

// -- Mock Imaging Service Repository --

type mockImagingRepo struct {
	services map[uuid.UUID]*ImagingServiceProfile
}

func newMockImagingRepo() *mockImagingRepo {
	return &mockImagingRepo{services: make(map[uuid.UUID]*ImagingServiceProfile)}
}

func (m *mockImagingRepo) Create(_ context.Context, s *ImagingServiceProfile) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = time.Now()
	m.services[s.ID] = s
	return nil
}

func (m *mockImagingRepo) GetByID(_ context.Context, id uuid.UUID) (*ImagingServiceProfile, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockImagingRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*ImagingServiceProfile, error) {
	for _, s := range m.services {
		if s.AccountID == accountID {
			return s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockImagingRepo) List(_ context.Context, limit, offset int) ([]*ImagingServiceProfile, int, error) {
	var result []*ImagingServiceProfile
	for _, s := range m.services {
		result = append(result, s)
	}
	return result, len(result), nil
}

func (m *mockImagingRepo) Update(_ context.Context, s *ImagingServiceProfile) error {
	m.services[s.ID] = s
	return nil
}

func (m *mockImagingRepo) DeleteByAccount(_ context.Context, accountID uuid.UUID) error {
	for id, s := range m.services {
		if s.AccountID == accountID {
			delete(m.services, id)
		}
	}
	return nil
}

// -- Mock Admin Repository --

type mockAdminRepo struct {
	admins map[uuid.UUID]*AdminProfile
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[uuid.UUID]*AdminProfile)}
}

func (m *mockAdminRepo) Create(_ context.Context, a *AdminProfile) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.admins[a.ID] = a
	return nil
}

func (m *mockAdminRepo) GetByAccount(_ context.Context, accountID uuid.UUID) (*AdminProfile, error) {
	for _, a := range m.admins {
		if a.AccountID == accountID {
			return a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockAdminRepo) DeleteByAccount(_ context.Context, accountID uuid.UUID) error {
	for id, a := range m.admins {
		if a.AccountID == accountID {
			delete(m.admins, id)
		}
	}
	return nil
}

// -- Helpers --

const testAdminCode = "adminCLINIC"

type testEnv struct {
	svc      *Service
	accounts *mockAccountRepo
	patients *mockPatientRepo
	doctors  *mockDoctorRepo
	labs     *mockLaboratoryRepo
	imaging  *mockImagingRepo
	admins   *mockAdminRepo
	mail     *mailer.MockEmailSender
	tokens   *auth.TokenManager
}

func newTestEnv() *testEnv {
	env := &testEnv{
		accounts: newMockAccountRepo(),
		patients: newMockPatientRepo(),
		doctors:  newMockDoctorRepo(),
		labs:     newMockLaboratoryRepo(),
		imaging:  newMockImagingRepo(),
		admins:   newMockAdminRepo(),
		mail:     &mailer.MockEmailSender{},
		tokens:   auth.NewTokenManager("test-secret"),
	}
	env.svc = NewService(
		env.accounts, env.patients, env.doctors, env.labs, env.imaging, env.admins,
		env.tokens, env.mail, mailer.NewTemplateEngine(),
		testAdminCode, "https://clinic.example/reset",
	)
	return env
}

func validRegister(role string) *RegisterRequest {
	return &RegisterRequest{
		Email:     "user@example.com",
		Password:  "Str0ng!pass",
		Role:      role,
		FirstName: "Amine",
		LastName:  "Ben Salah",
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *httperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *httperr.Error, got %T: %v", err, err)
	}
	return appErr.Status
}

// -- Register --

func TestRegister_Patient(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.Role != auth.RolePatient {
		t.Fatalf("expected role patient, got %s", result.User.Role)
	}
	if len(env.patients.patients) != 1 {
		t.Fatalf("expected 1 patient profile, got %d", len(env.patients.patients))
	}
	if len(env.accounts.accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(env.accounts.accounts))
	}
	for _, a := range env.accounts.accounts {
		if a.PasswordHash == "Str0ng!pass" {
			t.Fatal("password stored in clear")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("Str0ng!pass")); err != nil {
			t.Fatalf("stored hash does not match password: %v", err)
		}
	}
}

func TestRegister_EachRoleCreatesMatchingProfile(t *testing.T) {
	cases := []struct {
		role  string
		count func(env *testEnv) int
	}{
		{auth.RolePatient, func(env *testEnv) int { return len(env.patients.patients) }},
		{auth.RoleDoctor, func(env *testEnv) int { return len(env.doctors.doctors) }},
		{auth.RoleLaboratory, func(env *testEnv) int { return len(env.labs.labs) }},
		{auth.RoleImagingService, func(env *testEnv) int { return len(env.imaging.services) }},
		{auth.RoleAdmin, func(env *testEnv) int { return len(env.admins.admins) }},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			env := newTestEnv()
			req := validRegister(tc.role)
			req.AdminCode = testAdminCode
			if _, err := env.svc.Register(context.Background(), req); err != nil {
				t.Fatalf("Register failed for %s: %v", tc.role, err)
			}
			if tc.count(env) != 1 {
				t.Fatalf("expected 1 %s profile, got %d", tc.role, tc.count(env))
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient)); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient))
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
	if statusOf(t, err) != 400 {
		t.Fatalf("expected 400, got %d", statusOf(t, err))
	}
	if len(env.accounts.accounts) != 1 {
		t.Fatalf("expected 1 account after duplicate, got %d", len(env.accounts.accounts))
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	env := newTestEnv()
	req := validRegister(auth.RolePatient)
	req.Password = "weakpass"

	_, err := env.svc.Register(context.Background(), req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *httperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *httperr.Error, got %T", err)
	}
	if appErr.Fields["password"] == "" {
		t.Fatal("expected password field error")
	}
}

func TestRegister_AdminRequiresCode(t *testing.T) {
	env := newTestEnv()
	req := validRegister(auth.RoleAdmin)
	req.AdminCode = "wrong"

	_, err := env.svc.Register(context.Background(), req)
	if err == nil {
		t.Fatal("expected admin code error")
	}
	if statusOf(t, err) != 400 {
		t.Fatalf("expected 400, got %d", statusOf(t, err))
	}

	req.AdminCode = testAdminCode
	if _, err := env.svc.Register(context.Background(), req); err != nil {
		t.Fatalf("register with valid admin code failed: %v", err)
	}
}

func TestRegister_ProfileFailureDeletesAccount(t *testing.T) {
	env := newTestEnv()
	env.patients.failCreate = true

	_, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient))
	if err == nil {
		t.Fatal("expected error when profile creation fails")
	}
	if len(env.accounts.accounts) != 0 {
		t.Fatalf("expected account to be compensated away, got %d", len(env.accounts.accounts))
	}
}

func TestRegister_InvalidPhone(t *testing.T) {
	env := newTestEnv()
	req := validRegister(auth.RolePatient)
	req.Phone = "12345"

	_, err := env.svc.Register(context.Background(), req)
	if err == nil {
		t.Fatal("expected phone validation error")
	}

	req.Phone = "+21612345678"
	if _, err := env.svc.Register(context.Background(), req); err != nil {
		t.Fatalf("register with valid phone failed: %v", err)
	}
}

// -- Login --

func TestLogin_Success(t *testing.T) {
	env := newTestEnv()
	req := validRegister(auth.RoleDoctor)
	req.Specialty = "cardiology"
	if _, err := env.svc.Register(context.Background(), req); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := env.svc.Login(context.Background(), "user@example.com", "Str0ng!pass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.Specialty != "cardiology" {
		t.Fatalf("expected profile-enriched specialty, got %q", result.User.Specialty)
	}

	claims, err := env.tokens.Parse(result.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Role != auth.RoleDoctor {
		t.Fatalf("expected role doctor in claims, got %s", claims.Role)
	}
}

func TestLogin_UniformFailureMessage(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, unknownErr := env.svc.Login(context.Background(), "nobody@example.com", "Str0ng!pass")
	_, wrongErr := env.svc.Login(context.Background(), "user@example.com", "WrongPass1!")

	if unknownErr == nil || wrongErr == nil {
		t.Fatal("expected both logins to fail")
	}
	if statusOf(t, unknownErr) != 401 || statusOf(t, wrongErr) != 401 {
		t.Fatal("expected 401 for both failures")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

// -- Password reset --

func TestPasswordReset_FullFlow(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := env.svc.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	calls := env.mail.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "user@example.com" {
		t.Fatalf("email sent to %s", calls[0].To)
	}

	// Extract the token from the stored account.
	var token string
	for _, a := range env.accounts.accounts {
		if a.ResetToken == nil {
			t.Fatal("expected reset token to be stored")
		}
		token = *a.ResetToken
	}
	if !strings.Contains(calls[0].Body, token) {
		t.Fatal("expected the reset email to carry the token")
	}

	if err := env.svc.ResetPassword(context.Background(), token, "N3w!Passw0rd"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if _, err := env.svc.Login(context.Background(), "user@example.com", "N3w!Passw0rd"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, err := env.svc.Login(context.Background(), "user@example.com", "Str0ng!pass"); err == nil {
		t.Fatal("old password still accepted")
	}
}

func TestPasswordReset_TokenSingleUse(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := env.svc.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var token string
	for _, a := range env.accounts.accounts {
		token = *a.ResetToken
	}

	if err := env.svc.ResetPassword(context.Background(), token, "N3w!Passw0rd"); err != nil {
		t.Fatalf("first reset failed: %v", err)
	}
	if err := env.svc.ResetPassword(context.Background(), token, "An0ther!Pass"); err == nil {
		t.Fatal("expected second use of reset token to fail")
	}
}

func TestPasswordReset_UnknownEmail(t *testing.T) {
	env := newTestEnv()
	err := env.svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	if err == nil {
		t.Fatal("expected not found")
	}
	if statusOf(t, err) != 404 {
		t.Fatalf("expected 404, got %d", statusOf(t, err))
	}
	if len(env.mail.Calls()) != 0 {
		t.Fatal("no email should be sent for unknown accounts")
	}
}

func TestPasswordReset_ExpiredStoredToken(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := env.svc.RequestPasswordReset(context.Background(), "user@example.com"); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var token string
	for _, a := range env.accounts.accounts {
		token = *a.ResetToken
		past := time.Now().Add(-time.Minute)
		a.ResetExpires = &past
	}

	if err := env.svc.ResetPassword(context.Background(), token, "N3w!Passw0rd"); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

// -- Refresh --

func TestRefresh(t *testing.T) {
	env := newTestEnv()
	result, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	fresh, err := env.svc.Refresh(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	claims, err := env.tokens.Parse(fresh)
	if err != nil {
		t.Fatalf("refreshed token does not parse: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("expected email claim preserved, got %s", claims.Email)
	}

	if _, err := env.svc.Refresh(context.Background(), "garbage"); err == nil {
		t.Fatal("expected refresh of garbage token to fail")
	}
}

// -- Admin operations --

func TestDeleteAccount_SelfForbidden(t *testing.T) {
	env := newTestEnv()
	req := validRegister(auth.RoleAdmin)
	req.AdminCode = testAdminCode
	result, err := env.svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	id, _ := uuid.Parse(result.User.ID)
	err = env.svc.DeleteAccount(context.Background(), result.User.ID, id)
	if err == nil {
		t.Fatal("expected self-delete to be forbidden")
	}
	if statusOf(t, err) != 403 {
		t.Fatalf("expected 403, got %d", statusOf(t, err))
	}
}

func TestDeleteAccount_RemovesRoleProfile(t *testing.T) {
	env := newTestEnv()
	result, err := env.svc.Register(context.Background(), validRegister(auth.RoleDoctor))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	id, _ := uuid.Parse(result.User.ID)

	if err := env.svc.DeleteAccount(context.Background(), uuid.NewString(), id); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if len(env.accounts.accounts) != 0 {
		t.Fatal("account not deleted")
	}
	if len(env.doctors.doctors) != 0 {
		t.Fatal("doctor profile not deleted")
	}
}

func TestUpdateAccountRole(t *testing.T) {
	env := newTestEnv()
	result, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	id, _ := uuid.Parse(result.User.ID)

	if err := env.svc.UpdateAccountRole(context.Background(), id, auth.RoleDoctor); err != nil {
		t.Fatalf("UpdateAccountRole failed: %v", err)
	}
	a, _ := env.accounts.GetByID(context.Background(), id)
	if a.Role != auth.RoleDoctor {
		t.Fatalf("expected role doctor, got %s", a.Role)
	}

	if err := env.svc.UpdateAccountRole(context.Background(), id, "superuser"); err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
}

// -- Verification --

func TestSetVerificationStatus(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RoleDoctor)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	var doctorID uuid.UUID
	for id, d := range env.doctors.doctors {
		doctorID = id
		if d.VerificationStatus != VerificationPending {
			t.Fatalf("expected pending, got %s", d.VerificationStatus)
		}
	}

	if err := env.svc.SetVerificationStatus(context.Background(), auth.RoleDoctor, doctorID, VerificationVerified); err != nil {
		t.Fatalf("SetVerificationStatus failed: %v", err)
	}
	if env.doctors.doctors[doctorID].VerificationStatus != VerificationVerified {
		t.Fatal("status not updated")
	}

	if err := env.svc.SetVerificationStatus(context.Background(), auth.RoleDoctor, doctorID, "maybe"); err == nil {
		t.Fatal("expected invalid status to be rejected")
	}
	if err := env.svc.SetVerificationStatus(context.Background(), auth.RolePatient, doctorID, VerificationVerified); err == nil {
		t.Fatal("expected verification on patient kind to be rejected")
	}
}

// -- Profile pictures --

func TestUpdateProfilePicture_ReturnsPrevious(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RoleDoctor)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	var doctorID uuid.UUID
	for id := range env.doctors.doctors {
		doctorID = id
	}

	prev, err := env.svc.UpdateProfilePicture(context.Background(), auth.RoleDoctor, doctorID, "pic-1.png")
	if err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if prev != "" {
		t.Fatalf("expected no previous picture, got %q", prev)
	}

	prev, err = env.svc.UpdateProfilePicture(context.Background(), auth.RoleDoctor, doctorID, "pic-2.png")
	if err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if prev != "pic-1.png" {
		t.Fatalf("expected previous pic-1.png, got %q", prev)
	}

	if _, err := env.svc.UpdateProfilePicture(context.Background(), auth.RoleLaboratory, doctorID, "x.png"); err == nil {
		t.Fatal("expected unsupported kind to be rejected")
	}
}

// -- DeletePatient cascade --

func TestDeletePatient_CascadesAccount(t *testing.T) {
	env := newTestEnv()
	if _, err := env.svc.Register(context.Background(), validRegister(auth.RolePatient)); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	var patientID uuid.UUID
	for id := range env.patients.patients {
		patientID = id
	}

	if err := env.svc.DeletePatient(context.Background(), patientID); err != nil {
		t.Fatalf("DeletePatient failed: %v", err)
	}
	if len(env.patients.patients) != 0 {
		t.Fatal("patient profile not deleted")
	}
	if len(env.accounts.accounts) != 0 {
		t.Fatal("account not deleted")
	}
}

// -- Me --

func TestMe_EnrichesFromProfile(t *testing.T) {
	env := newTestEnv()
	req := validRegister(auth.RoleLaboratory)
	req.Services = []string{"blood tests"}
	result, err := env.svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	summary, err := env.svc.Me(context.Background(), result.User.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if summary.Name != "Amine Ben Salah" {
		t.Fatalf("expected org name, got %q", summary.Name)
	}
	if len(summary.Services) != 1 || summary.Services[0] != "blood tests" {
		t.Fatalf("expected services enriched, got %v", summary.Services)
	}
}
