package riskassessment

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/healthassist/internal/knowledge"
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
	readGroup.GET("/risk-questionnaire", h.GetQuestionnaire)
	readGroup.GET("/risk-assessments/:id", h.GetSession)
	readGroup.GET("/risk-assessment-results", h.ListResults)

	writeGroup := api.Group("", auth.RequireRole("patient"))
	writeGroup.POST("/risk-assessments/score", h.Score)
	writeGroup.POST("/risk-assessments", h.StartSession)
	writeGroup.PUT("/risk-assessments/:id/answers", h.Answer)
	writeGroup.POST("/risk-assessments/:id/next", h.Next)
	writeGroup.POST("/risk-assessments/:id/previous", h.Previous)
	writeGroup.POST("/risk-assessments/:id/restart", h.Restart)
}

type sessionResponse struct {
	*Session
	CurrentQuestion *knowledge.QuestionnaireItem `json:"current_question,omitempty"`
	TotalQuestions  int                          `json:"total_questions"`
	Disclaimer      string                       `json:"disclaimer"`
}

type scoreRequest struct {
	Answers map[string]string `json:"answers"`
}

type startRequest struct {
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}

type answerRequest struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

func (h *Handler) GetQuestionnaire(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":      h.svc.Questionnaire(),
		"disclaimer": h.svc.Disclaimer(),
	})
}

func (h *Handler) Score(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	assessments, err := h.svc.Score(req.Answers)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"assessments": assessments,
		"disclaimer":  h.svc.Disclaimer(),
	})
}

func (h *Handler) StartSession(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Start(c.Request().Context(), req.PatientID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, h.envelope(sess))
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sess, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.envelope(sess))
}

func (h *Handler) Answer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.QuestionID == "" || req.Value == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question_id and value are required")
	}
	sess, err := h.svc.Answer(c.Request().Context(), id, req.QuestionID, req.Value)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.envelope(sess))
}

func (h *Handler) Next(c echo.Context) error {
	return h.transition(c, h.svc.Next)
}

func (h *Handler) Previous(c echo.Context) error {
	return h.transition(c, h.svc.Previous)
}

func (h *Handler) Restart(c echo.Context) error {
	return h.transition(c, h.svc.Restart)
}

func (h *Handler) ListResults(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListResults(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := pagination.NewResponse(items, total, pg.Limit, pg.Offset)
	resp.Links = pg.Links(c.Request().URL, total)
	resp.Disclaimer = h.svc.Disclaimer()
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) transition(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*Session, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sess, err := fn(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, h.envelope(sess))
}

func (h *Handler) envelope(sess *Session) sessionResponse {
	resp := sessionResponse{
		Session:        sess,
		TotalQuestions: len(h.svc.Questionnaire()),
		Disclaimer:     h.svc.Disclaimer(),
	}
	if q, ok := sess.Current(h.svc.kb); ok {
		resp.CurrentQuestion = &q
	}
	return resp
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownQuestion), errors.Is(err, ErrUnknownOption):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSessionComplete):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
