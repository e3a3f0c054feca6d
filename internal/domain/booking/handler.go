package booking

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
	api.POST("/appointments", h.CreateAppointment, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments/history", h.History, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments", h.ListByProvider,
		auth.RequireRole(auth.RoleDoctor, auth.RoleLaboratory, auth.RoleImagingService, auth.RoleAdmin))
	api.PATCH("/appointments/:id/status", h.UpdateStatus)

	api.POST("/availability", h.CreateSlot,
		auth.RequireRole(auth.RoleLaboratory, auth.RoleImagingService))
	api.GET("/availability", h.ListSlots)
	api.PATCH("/availability/:id", h.BookSlot)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req CreateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	appt, err := h.svc.CreateAppointment(c.Request().Context(),
		auth.UserIDFromContext(c.Request().Context()), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, appt)
}

func (h *Handler) History(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(),
		auth.UserIDFromContext(c.Request().Context()), c.QueryParam("status"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}

// ListByProvider serves a provider's inbound appointments. Admins may name
// any provider id; providers default to their own.
func (h *Handler) ListByProvider(c echo.Context) error {
	raw := c.QueryParam("providerId")
	if raw == "" {
		raw = auth.UserIDFromContext(c.Request().Context())
	}
	providerID, err := uuid.Parse(raw)
	if err != nil {
		return httperr.BadRequest("a valid provider id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByProvider(c.Request().Context(), providerID, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid appointment id")
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	appt, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, appt)
}

func (h *Handler) CreateSlot(c echo.Context) error {
	var req CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	slot, err := h.svc.CreateSlot(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, slot)
}

func (h *Handler) ListSlots(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListSlots(c.Request().Context(), c.QueryParam("role"), pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}

func (h *Handler) BookSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid availability id")
	}
	slot, err := h.svc.BookSlot(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, slot)
}
