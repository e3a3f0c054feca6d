package identity

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/httperr"
	"github.com/clinichub/clinichub/internal/platform/upload"
	"github.com/clinichub/clinichub/pkg/pagination"
)

type Handler struct {
	svc      *Service
	pictures upload.Store
}

func NewHandler(svc *Service, pictures upload.Store) *Handler {
	return &Handler{svc: svc, pictures: pictures}
}

// RegisterRoutes mounts the public auth endpoints on public and the
// token-protected ones on api.
func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/refresh", h.Refresh)
	public.POST("/auth/password-reset/request", h.RequestPasswordReset)
	public.POST("/auth/password-reset", h.ResetPassword)
	public.POST("/auth/validate-admin-code", h.ValidateAdminCode)

	api.POST("/auth/logout", h.Logout)
	api.GET("/users/me", h.Me)

	adminGroup := api.Group("", auth.RequireRole(auth.RoleAdmin))
	adminGroup.GET("/users", h.ListAccounts)
	adminGroup.DELETE("/users/:id", h.DeleteAccount)
	adminGroup.PATCH("/users/:id/role", h.UpdateAccountRole)
	adminGroup.PATCH("/doctors/:id/verification", h.VerifyDoctor)
	adminGroup.PATCH("/laboratories/:id/verification", h.VerifyLaboratory)
	adminGroup.DELETE("/patients/:id", h.DeletePatient)

	api.GET("/patients", h.ListPatients, auth.RequireRole(auth.RoleDoctor, auth.RoleLaboratory, auth.RoleImagingService))
	api.GET("/patients/:id", h.GetPatient, auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleLaboratory, auth.RoleImagingService))
	api.PUT("/patients/:id", h.UpdatePatient, auth.RequireRole(auth.RolePatient))

	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor, auth.RequireRole(auth.RoleDoctor))

	api.GET("/laboratories", h.ListLaboratories)
	api.GET("/laboratories/:id", h.GetLaboratory)
	api.PUT("/laboratories/:id", h.UpdateLaboratory, auth.RequireRole(auth.RoleLaboratory))

	api.GET("/imaging-services", h.ListImagingServices)
	api.GET("/imaging-services/:id", h.GetImagingService)
	api.PUT("/imaging-services/:id", h.UpdateImagingService, auth.RequireRole(auth.RoleImagingService))

	api.POST("/profile-picture/:kind/:id", h.UploadProfilePicture, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/profile-picture/:kind/:id", h.GetProfilePicture)
}

// -- Auth --

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	result, err := h.svc.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return httperr.Validation(map[string]string{
			"email":    "email is required",
			"password": "password is required",
		})
	}
	result, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, result)
}

// Logout is client side only; there is no server-side revocation store.
func (h *Handler) Logout(c echo.Context) error {
	return httperr.OKMessage(c, http.StatusOK, "logged out")
}

type refreshRequest struct {
	Token string `json:"token"`
}

func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if req.Token == "" {
		return httperr.Validation(map[string]string{"token": "token is required"})
	}
	token, err := h.svc.Refresh(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, map[string]string{"token": token})
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (h *Handler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if !emailPattern.MatchString(req.Email) {
		return httperr.Validation(map[string]string{"email": "invalid email"})
	}
	if err := h.svc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return httperr.OKMessage(c, http.StatusOK, "password reset email sent")
}

type passwordReset struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req passwordReset
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if req.Token == "" {
		return httperr.Validation(map[string]string{"token": "token is required"})
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return httperr.OKMessage(c, http.StatusOK, "password updated")
}

type adminCodeRequest struct {
	AdminCode string `json:"adminCode"`
}

func (h *Handler) ValidateAdminCode(c echo.Context) error {
	var req adminCodeRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if !h.svc.ValidateAdminCode(req.AdminCode) {
		return httperr.BadRequest("invalid admin code")
	}
	return httperr.OK(c, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) Me(c echo.Context) error {
	summary, err := h.svc.Me(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, summary)
}

// -- Account administration --

func (h *Handler) ListAccounts(c echo.Context) error {
	pg := pagination.FromContext(c)
	accounts, total, err := h.svc.ListAccounts(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(accounts, total, pg))
}

func (h *Handler) DeleteAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	requester := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.DeleteAccount(c.Request().Context(), requester, id); err != nil {
		return err
	}
	return httperr.OKMessage(c, http.StatusOK, "account deleted")
}

type roleUpdateRequest struct {
	Role string `json:"role"`
}

func (h *Handler) UpdateAccountRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	var req roleUpdateRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if err := h.svc.UpdateAccountRole(c.Request().Context(), id, req.Role); err != nil {
		return err
	}
	return httperr.OKMessage(c, http.StatusOK, "role updated")
}

type verificationRequest struct {
	Status string `json:"status"`
}

func (h *Handler) VerifyDoctor(c echo.Context) error {
	return h.verify(c, auth.RoleDoctor)
}

func (h *Handler) VerifyLaboratory(c echo.Context) error {
	return h.verify(c, auth.RoleLaboratory)
}

func (h *Handler) verify(c echo.Context, kind string) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if err := h.svc.SetVerificationStatus(c.Request().Context(), kind, id, req.Status); err != nil {
		return err
	}
	return httperr.OKMessage(c, http.StatusOK, "verification status updated")
}

// -- Profiles --

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(patients, total, pg))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	var p PatientProfile
	if err := c.Bind(&p); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	p.ID = id
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return err
	}
	return httperr.OKMessage(c, http.StatusOK, "patient deleted")
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, d)
}

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(doctors, total, pg))
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	var d DoctorProfile
	if err := c.Bind(&d); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	d.ID = id
	if err := h.svc.UpdateDoctor(c.Request().Context(), &d); err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, d)
}

func (h *Handler) GetLaboratory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	l, err := h.svc.GetLaboratory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, l)
}

func (h *Handler) ListLaboratories(c echo.Context) error {
	pg := pagination.FromContext(c)
	labs, total, err := h.svc.ListLaboratories(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(labs, total, pg))
}

func (h *Handler) UpdateLaboratory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	var l LaboratoryProfile
	if err := c.Bind(&l); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	l.ID = id
	if err := h.svc.UpdateLaboratory(c.Request().Context(), &l); err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, l)
}

func (h *Handler) GetImagingService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	s, err := h.svc.GetImagingService(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, s)
}

func (h *Handler) ListImagingServices(c echo.Context) error {
	pg := pagination.FromContext(c)
	services, total, err := h.svc.ListImagingServices(c.Request().Context(), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(services, total, pg))
}

func (h *Handler) UpdateImagingService(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	var s ImagingServiceProfile
	if err := c.Bind(&s); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	s.ID = id
	if err := h.svc.UpdateImagingService(c.Request().Context(), &s); err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, s)
}

// -- Profile pictures --

func (h *Handler) UploadProfilePicture(c echo.Context) error {
	kind := c.Param("kind")
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return httperr.Validation(map[string]string{"image": "image file is required"})
	}
	if err := upload.Validate(file); err != nil {
		return httperr.BadRequest(err.Error())
	}

	stored, err := h.pictures.Save(file, "")
	if err != nil {
		return httperr.Internal(err)
	}

	previous, err := h.svc.UpdateProfilePicture(c.Request().Context(), kind, id, stored)
	if err != nil {
		_ = h.pictures.Remove(stored)
		return err
	}
	if previous != "" {
		// Best effort: the new picture replaces the old file.
		_ = h.pictures.Remove(previous)
	}

	return httperr.OK(c, http.StatusOK, map[string]string{"profilePicture": stored})
}

func (h *Handler) GetProfilePicture(c echo.Context) error {
	kind := c.Param("kind")
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid id")
	}
	stored, err := h.svc.ProfilePicture(c.Request().Context(), kind, id)
	if err != nil {
		return err
	}
	return c.File(h.pictures.Path(stored))
}
