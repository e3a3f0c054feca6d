package billing

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
	api.POST("/payments", h.Create)
	api.GET("/payments/:accountID", h.ListByAccount)
	api.PATCH("/payments/:id/status", h.UpdateStatus)
	api.GET("/statistics/payments", h.Statistics, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	payment, err := h.svc.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, payment)
}

func (h *Handler) ListByAccount(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("accountID"))
	if err != nil {
		return httperr.BadRequest("invalid account id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByAccount(c.Request().Context(), accountID, pg.Limit, pg.Offset())
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
		return httperr.BadRequest("invalid payment id")
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	payment, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, payment)
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, stats)
}
