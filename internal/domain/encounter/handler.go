package encounter

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/internal/platform/httperr"
	"github.com/clinichub/clinichub/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/consultations", h.CreateConsultation,
		auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
	api.GET("/consultations", h.ListConsultations,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	api.GET("/consultations/:id", h.GetConsultation)
	api.POST("/consultations/:id/start-video", h.StartVideo,
		auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
	api.POST("/consultations/:id/end-video", h.EndVideo, auth.RequireRole(auth.RoleDoctor))
	api.POST("/consultations/:id/validate", h.ValidateConsultation, auth.RequireRole(auth.RoleDoctor))
	api.POST("/consultations/:id/cancel", h.CancelConsultation)

	api.POST("/prescriptions", h.CreatePrescription, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions/patient/:patientID", h.PrescriptionsByPatient)
	api.PATCH("/prescriptions/:id/status", h.UpdatePrescriptionStatus)
}

func (h *Handler) CreateConsultation(c echo.Context) error {
	var req CreateConsultationRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	cons, err := h.svc.CreateConsultation(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, cons)
}

func (h *Handler) ListConsultations(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx),
		pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) GetConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid consultation id")
	}
	cons, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, cons)
}

func (h *Handler) StartVideo(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid consultation id")
	}
	cons, err := h.svc.StartVideo(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, map[string]string{"videoRoomId": cons.VideoRoomID})
}

func (h *Handler) EndVideo(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid consultation id")
	}
	cons, err := h.svc.EndVideo(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, cons)
}

func (h *Handler) ValidateConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid consultation id")
	}
	cons, err := h.svc.Validate(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, cons)
}

func (h *Handler) CancelConsultation(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid consultation id")
	}
	cons, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, cons)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var req CreatePrescriptionRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	presc, err := h.svc.CreatePrescription(c.Request().Context(),
		auth.UserIDFromContext(c.Request().Context()), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, presc)
}

func (h *Handler) PrescriptionsByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return httperr.BadRequest("invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PrescriptionsByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}

type prescriptionStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdatePrescriptionStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid prescription id")
	}
	var req prescriptionStatusRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	presc, err := h.svc.UpdatePrescriptionStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, presc)
}
