package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Account Repository ===========

type accountRepoPG struct{ pool *pgxpool.Pool }

func NewAccountRepoPG(pool *pgxpool.Pool) AccountRepository { return &accountRepoPG{pool: pool} }

const accountCols = `id, email, password_hash, role, reset_token, reset_expires, created_at, updated_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role,
		&a.ResetToken, &a.ResetExpires, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO account (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		a.ID, a.Email, a.PasswordHash, a.Role).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *accountRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE id = $1`, id))
}

func (r *accountRepoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountCols+` FROM account WHERE email = $1`, email))
}

func (r *accountRepoPG) List(ctx context.Context, limit, offset int) ([]*Account, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM account`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+accountCols+` FROM account ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *accountRepoPG) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE account SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}

func (r *accountRepoPG) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	_, err := r.pool.Exec(ctx, `UPDATE account SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	return err
}

func (r *accountRepoPG) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE account SET reset_token = $2, reset_expires = $3, updated_at = NOW() WHERE id = $1`, id, token, expires)
	return err
}

func (r *accountRepoPG) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE account SET reset_token = NULL, reset_expires = NULL, updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *accountRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM account WHERE id = $1`, id)
	return err
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, account_id, first_name, last_name, father_name, dob,
	email, phone, address, is_cnam_member, cnam_file_id, profile_picture,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*PatientProfile, error) {
	var p PatientProfile
	var picture *string
	err := row.Scan(&p.ID, &p.AccountID, &p.FirstName, &p.LastName, &p.FatherName, &p.DOB,
		&p.Email, &p.Phone, &p.Address, &p.IsCnamMember, &p.CnamFileID, &picture,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if picture != nil {
		p.ProfilePicture = *picture
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *PatientProfile) error {
	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_profile (id, account_id, first_name, last_name, father_name, dob,
			email, phone, address, is_cnam_member, cnam_file_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		p.ID, p.AccountID, p.FirstName, p.LastName, p.FatherName, p.DOB,
		p.Email, p.Phone, p.Address, p.IsCnamMember, p.CnamFileID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientProfile, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient_profile WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByAccount(ctx context.Context, accountID uuid.UUID) (*PatientProfile, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient_profile WHERE account_id = $1`, accountID))
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*PatientProfile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient_profile`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient_profile ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PatientProfile
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *patientRepoPG) Update(ctx context.Context, p *PatientProfile) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patient_profile SET first_name=$2, last_name=$3, father_name=$4, dob=$5,
			email=$6, phone=$7, address=$8, is_cnam_member=$9, cnam_file_id=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.FatherName, p.DOB,
		p.Email, p.Phone, p.Address, p.IsCnamMember, p.CnamFileID)
	return err
}

func (r *patientRepoPG) SetProfilePicture(ctx context.Context, id uuid.UUID, path string) error {
	_, err := r.pool.Exec(ctx, `UPDATE patient_profile SET profile_picture = $2, updated_at = NOW() WHERE id = $1`, id, path)
	return err
}

func (r *patientRepoPG) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient_profile WHERE account_id = $1`, accountID)
	return err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, account_id, first_name, last_name, email, phone, address,
	specialty, license_number, hospital, verification_status, profile_picture,
	created_at, updated_at`

func scanDoctor(row pgx.Row) (*DoctorProfile, error) {
	var d DoctorProfile
	var picture *string
	err := row.Scan(&d.ID, &d.AccountID, &d.FirstName, &d.LastName, &d.Email, &d.Phone, &d.Address,
		&d.Specialty, &d.LicenseNumber, &d.Hospital, &d.VerificationStatus, &picture,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if picture != nil {
		d.ProfilePicture = *picture
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *DoctorProfile) error {
	d.ID = uuid.New()
	if d.VerificationStatus == "" {
		d.VerificationStatus = VerificationPending
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO doctor_profile (id, account_id, first_name, last_name, email, phone, address,
			specialty, license_number, hospital, verification_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at, updated_at`,
		d.ID, d.AccountID, d.FirstName, d.LastName, d.Email, d.Phone, d.Address,
		d.Specialty, d.LicenseNumber, d.Hospital, d.VerificationStatus).
		Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DoctorProfile, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor_profile WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByAccount(ctx context.Context, accountID uuid.UUID) (*DoctorProfile, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor_profile WHERE account_id = $1`, accountID))
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*DoctorProfile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor_profile`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor_profile ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DoctorProfile
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) Update(ctx context.Context, d *DoctorProfile) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE doctor_profile SET first_name=$2, last_name=$3, email=$4, phone=$5, address=$6,
			specialty=$7, license_number=$8, hospital=$9, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FirstName, d.LastName, d.Email, d.Phone, d.Address,
		d.Specialty, d.LicenseNumber, d.Hospital)
	return err
}

func (r *doctorRepoPG) SetProfilePicture(ctx context.Context, id uuid.UUID, path string) error {
	_, err := r.pool.Exec(ctx, `UPDATE doctor_profile SET profile_picture = $2, updated_at = NOW() WHERE id = $1`, id, path)
	return err
}

func (r *doctorRepoPG) SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE doctor_profile SET verification_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *doctorRepoPG) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM doctor_profile WHERE account_id = $1`, accountID)
	return err
}

// =========== Laboratory Repository ===========

type laboratoryRepoPG struct{ pool *pgxpool.Pool }

func NewLaboratoryRepoPG(pool *pgxpool.Pool) LaboratoryRepository {
	return &laboratoryRepoPG{pool: pool}
}

const laboratoryCols = `id, account_id, name, email, phone, address, services,
	license_number, verification_status, profile_picture, created_at, updated_at`

func scanLaboratory(row pgx.Row) (*LaboratoryProfile, error) {
	var l LaboratoryProfile
	var picture *string
	err := row.Scan(&l.ID, &l.AccountID, &l.Name, &l.Email, &l.Phone, &l.Address, &l.Services,
		&l.LicenseNumber, &l.VerificationStatus, &picture, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if picture != nil {
		l.ProfilePicture = *picture
	}
	return &l, nil
}

func (r *laboratoryRepoPG) Create(ctx context.Context, l *LaboratoryProfile) error {
	l.ID = uuid.New()
	if l.VerificationStatus == "" {
		l.VerificationStatus = VerificationPending
	}
	if l.Services == nil {
		l.Services = []string{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO laboratory_profile (id, account_id, name, email, phone, address, services,
			license_number, verification_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		l.ID, l.AccountID, l.Name, l.Email, l.Phone, l.Address, l.Services,
		l.LicenseNumber, l.VerificationStatus).
		Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *laboratoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LaboratoryProfile, error) {
	return scanLaboratory(r.pool.QueryRow(ctx, `SELECT `+laboratoryCols+` FROM laboratory_profile WHERE id = $1`, id))
}

func (r *laboratoryRepoPG) GetByAccount(ctx context.Context, accountID uuid.UUID) (*LaboratoryProfile, error) {
	return scanLaboratory(r.pool.QueryRow(ctx, `SELECT `+laboratoryCols+` FROM laboratory_profile WHERE account_id = $1`, accountID))
}

func (r *laboratoryRepoPG) List(ctx context.Context, limit, offset int) ([]*LaboratoryProfile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM laboratory_profile`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+laboratoryCols+` FROM laboratory_profile ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*LaboratoryProfile
	for rows.Next() {
		l, err := scanLaboratory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

func (r *laboratoryRepoPG) Update(ctx context.Context, l *LaboratoryProfile) error {
	if l.Services == nil {
		l.Services = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE laboratory_profile SET name=$2, email=$3, phone=$4, address=$5, services=$6,
			license_number=$7, updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Name, l.Email, l.Phone, l.Address, l.Services, l.LicenseNumber)
	return err
}

func (r *laboratoryRepoPG) SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE laboratory_profile SET verification_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *laboratoryRepoPG) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM laboratory_profile WHERE account_id = $1`, accountID)
	return err
}

// =========== Imaging Service Repository ===========

type imagingRepoPG struct{ pool *pgxpool.Pool }

func NewImagingServiceRepoPG(pool *pgxpool.Pool) ImagingServiceRepository {
	return &imagingRepoPG{pool: pool}
}

const imagingCols = `id, account_id, name, email, phone, address, services,
	profile_picture, created_at, updated_at`

func scanImaging(row pgx.Row) (*ImagingServiceProfile, error) {
	var s ImagingServiceProfile
	var picture *string
	err := row.Scan(&s.ID, &s.AccountID, &s.Name, &s.Email, &s.Phone, &s.Address, &s.Services,
		&picture, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if picture != nil {
		s.ProfilePicture = *picture
	}
	return &s, nil
}

func (r *imagingRepoPG) Create(ctx context.Context, s *ImagingServiceProfile) error {
	s.ID = uuid.New()
	if s.Services == nil {
		s.Services = []string{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO imaging_service_profile (id, account_id, name, email, phone, address, services)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		s.ID, s.AccountID, s.Name, s.Email, s.Phone, s.Address, s.Services).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *imagingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ImagingServiceProfile, error) {
	return scanImaging(r.pool.QueryRow(ctx, `SELECT `+imagingCols+` FROM imaging_service_profile WHERE id = $1`, id))
}

func (r *imagingRepoPG) GetByAccount(ctx context.Context, accountID uuid.UUID) (*ImagingServiceProfile, error) {
	return scanImaging(r.pool.QueryRow(ctx, `SELECT `+imagingCols+` FROM imaging_service_profile WHERE account_id = $1`, accountID))
}

func (r *imagingRepoPG) List(ctx context.Context, limit, offset int) ([]*ImagingServiceProfile, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM imaging_service_profile`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+imagingCols+` FROM imaging_service_profile ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ImagingServiceProfile
	for rows.Next() {
		s, err := scanImaging(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *imagingRepoPG) Update(ctx context.Context, s *ImagingServiceProfile) error {
	if s.Services == nil {
		s.Services = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE imaging_service_profile SET name=$2, email=$3, phone=$4, address=$5, services=$6, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Name, s.Email, s.Phone, s.Address, s.Services)
	return err
}

func (r *imagingRepoPG) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM imaging_service_profile WHERE account_id = $1`, accountID)
	return err
}

// =========== Admin Repository ===========

type adminRepoPG struct{ pool *pgxpool.Pool }

func NewAdminRepoPG(pool *pgxpool.Pool) AdminRepository { return &adminRepoPG{pool: pool} }

func (r *adminRepoPG) Create(ctx context.Context, a *AdminProfile) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO admin_profile (id, account_id, first_name, last_name, email)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at, updated_at`,
		a.ID, a.AccountID, a.FirstName, a.LastName, a.Email).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *adminRepoPG) GetByAccount(ctx context.Context, accountID uuid.UUID) (*AdminProfile, error) {
	var a AdminProfile
	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, first_name, last_name, email, created_at, updated_at
		FROM admin_profile WHERE account_id = $1`, accountID).
		Scan(&a.ID, &a.AccountID, &a.FirstName, &a.LastName, &a.Email, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminRepoPG) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM admin_profile WHERE account_id = $1`, accountID)
	return err
}
