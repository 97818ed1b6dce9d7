package inference

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/healthassist/internal/platform/auth"
	"github.com/ehr/healthassist/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("patient", "clinician"))
	readGroup.GET("/symptoms", h.ListSymptoms)
	readGroup.GET("/symptom-checks", h.ListChecks)
	readGroup.GET("/symptom-checks/:id", h.GetCheck)

	writeGroup := api.Group("", auth.RequireRole("patient"))
	writeGroup.POST("/symptoms/extract", h.ExtractSymptoms)
	writeGroup.POST("/symptom-checks", h.CreateCheck)
}

// checkResponse attaches the disclaimer to every inference result.
type checkResponse struct {
	*SymptomCheck
	Disclaimer string `json:"disclaimer"`
}

type extractRequest struct {
	Text string `json:"text"`
	// Seen carries tokens from earlier transcript fragments.
	Seen []string `json:"seen,omitempty"`
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symptoms": h.svc.Vocabulary(),
	})
}

func (h *Handler) ExtractSymptoms(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"symptoms": h.svc.Accumulate(req.Seen, req.Text),
	})
}

func (h *Handler) CreateCheck(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	check, err := h.svc.Check(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidDemographics):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record symptom check").SetInternal(err)
	}
	return c.JSON(http.StatusCreated, checkResponse{SymptomCheck: check, Disclaimer: h.svc.Disclaimer()})
}

func (h *Handler) GetCheck(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	check, err := h.svc.GetCheck(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrCheckNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "symptom check not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, checkResponse{SymptomCheck: check, Disclaimer: h.svc.Disclaimer()})
}

func (h *Handler) ListChecks(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListChecksByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := pagination.NewResponse(items, total, pg.Limit, pg.Offset)
	resp.Links = pg.Links(c.Request().URL, total)
	resp.Disclaimer = h.svc.Disclaimer()
	return c.JSON(http.StatusOK, resp)
}
