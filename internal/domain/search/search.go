// Package search serves the cross-provider directory lookup.
package search

import (
	"context"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/domain/identity"
	"github.com/clinichub/clinichub/internal/platform/httperr"
)

// Result groups the matching providers per kind.
type Result struct {
	Doctors         []*identity.DoctorProfile         `json:"doctors"`
	Laboratories    []*identity.LaboratoryProfile     `json:"laboratories"`
	ImagingServices []*identity.ImagingServiceProfile `json:"imagingServices"`
}

// Repository runs the case-insensitive substring match per provider table.
type Repository interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// Service validates and delegates the lookup.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// Search matches the query against doctor names and specialties, laboratory
// and imaging-service names and services.
func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, httperr.BadRequest("a search query is required")
	}
	result, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return result, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/search", h.Search)
}

func (h *Handler) Search(c echo.Context) error {
	result, err := h.svc.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, result)
}

// =========== Postgres ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const doctorCols = `id, account_id, first_name, last_name, email, phone, address,
	specialty, license_number, hospital, verification_status, profile_picture,
	created_at, updated_at`

const laboratoryCols = `id, account_id, name, email, phone, address, services,
	license_number, verification_status, profile_picture, created_at, updated_at`

const imagingCols = `id, account_id, name, email, phone, address, services,
	profile_picture, created_at, updated_at`

func (r *repoPG) Search(ctx context.Context, query string) (*Result, error) {
	pattern := "%" + query + "%"
	result := &Result{
		Doctors:         []*identity.DoctorProfile{},
		Laboratories:    []*identity.LaboratoryProfile{},
		ImagingServices: []*identity.ImagingServiceProfile{},
	}

	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor_profile
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR specialty ILIKE $1
		ORDER BY last_name, first_name`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d identity.DoctorProfile
		var picture *string
		err := rows.Scan(&d.ID, &d.AccountID, &d.FirstName, &d.LastName, &d.Email, &d.Phone,
			&d.Address, &d.Specialty, &d.LicenseNumber, &d.Hospital, &d.VerificationStatus,
			&picture, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if picture != nil {
			d.ProfilePicture = *picture
		}
		result.Doctors = append(result.Doctors, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT `+laboratoryCols+` FROM laboratory_profile
		WHERE name ILIKE $1 OR EXISTS (
			SELECT 1 FROM unnest(services) AS service WHERE service ILIKE $1
		)
		ORDER BY name`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l identity.LaboratoryProfile
		var picture *string
		err := rows.Scan(&l.ID, &l.AccountID, &l.Name, &l.Email, &l.Phone, &l.Address,
			&l.Services, &l.LicenseNumber, &l.VerificationStatus, &picture,
			&l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if picture != nil {
			l.ProfilePicture = *picture
		}
		result.Laboratories = append(result.Laboratories, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT `+imagingCols+` FROM imaging_service_profile
		WHERE name ILIKE $1 OR EXISTS (
			SELECT 1 FROM unnest(services) AS service WHERE service ILIKE $1
		)
		ORDER BY name`, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var i identity.ImagingServiceProfile
		var picture *string
		err := rows.Scan(&i.ID, &i.AccountID, &i.Name, &i.Email, &i.Phone, &i.Address,
			&i.Services, &picture, &i.CreatedAt, &i.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if picture != nil {
			i.ProfilePicture = *picture
		}
		result.ImagingServices = append(result.ImagingServices, &i)
	}
	return result, rows.Err()
}
