package diagnostics

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
	svc    *Service
	images upload.Store
}

func NewHandler(svc *Service, images upload.Store) *Handler {
	return &Handler{svc: svc, images: images}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/analyses", h.CreateAnalysis, auth.RequireRole(auth.RoleLaboratory))
	api.PATCH("/analyses/:id", h.UpdateAnalysis, auth.RequireRole(auth.RoleLaboratory))
	api.GET("/analyses/account/:accountID", h.AnalysesByAccount)

	api.POST("/imaging/upload", h.UploadImage,
		auth.RequireRole(auth.RoleImagingService, auth.RoleDoctor))
	api.GET("/imaging/reports/:accountID", h.ReportsByAccount)
}

func (h *Handler) CreateAnalysis(c echo.Context) error {
	var req CreateAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	analysis, err := h.svc.CreateAnalysis(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusCreated, analysis)
}

func (h *Handler) UpdateAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httperr.BadRequest("invalid analysis id")
	}
	var req UpdateAnalysisRequest
	if err := c.Bind(&req); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	analysis, err := h.svc.UpdateAnalysis(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, analysis)
}

func (h *Handler) AnalysesByAccount(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("accountID"))
	if err != nil {
		return httperr.BadRequest("invalid account id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.AnalysesByAccount(c.Request().Context(), accountID, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}

// UploadImage stores the uploaded image, forwards it to the analysis service
// and returns the persisted report. The stored file is removed again when the
// analysis fails.
func (h *Handler) UploadImage(c echo.Context) error {
	accountID, err := uuid.Parse(c.FormValue("accountId"))
	if err != nil {
		return httperr.BadRequest("a valid account id is required")
	}
	file, err := c.FormFile("image")
	if err != nil {
		return httperr.BadRequest("an image file is required")
	}
	if err := upload.Validate(file); err != nil {
		return httperr.BadRequest(err.Error())
	}

	stored, err := h.images.Save(file, "")
	if err != nil {
		return httperr.Internal(err)
	}

	src, err := file.Open()
	if err != nil {
		return httperr.Internal(err)
	}
	defer src.Close()

	report, err := h.svc.AnalyzeImage(c.Request().Context(), accountID, file.Filename, stored, src)
	if err != nil {
		_ = h.images.Remove(stored)
		return err
	}
	return httperr.OK(c, http.StatusCreated, report)
}

func (h *Handler) ReportsByAccount(c echo.Context) error {
	accountID, err := uuid.Parse(c.Param("accountID"))
	if err != nil {
		return httperr.BadRequest("invalid account id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ReportsByAccount(c.Request().Context(), accountID, pg.Limit, pg.Offset())
	if err != nil {
		return err
	}
	return httperr.OK(c, http.StatusOK, pagination.NewResponse(items, total, pg))
}
