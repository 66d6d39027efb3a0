package analysis

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/platform/analyzer"
	"github.com/dermaclinic/dermaclinic/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(identity.RoleAssistant))
	staff.POST("/skin-analyses", h.Upload)
	staff.GET("/skin-analyses", h.List)
	staff.GET("/skin-analyses/:id", h.Get)
	staff.GET("/patients/:id/skin-analyses", h.ByPatient)
	staff.PATCH("/skin-analyses/:id", h.Update)
	staff.POST("/skin-analyses/:id/questionnaire", h.AttachQuestionnaire)
	staff.GET("/skin-analyses/:id/questionnaire", h.GetQuestionnaire)
	staff.GET("/skin-analyses/:id/validations", h.ValidationsByAnalysis)

	doctors := api.Group("", auth.RequireRole())
	doctors.DELETE("/skin-analyses/:id", h.Delete)
	doctors.POST("/skin-analyses/:id/request-review", h.RequestReview)

	experts := api.Group("", auth.RequireRole(identity.RoleExpert))
	experts.GET("/validations", h.MyValidations)
	experts.POST("/validations/:id/complete", h.CompleteReview)
	experts.GET("/notifications", h.MyNotifications)
	experts.POST("/notifications/:id/read", h.MarkNotificationRead)
}

func (h *Handler) Upload(c echo.Context) error {
	var a SkinAnalysis
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Upload(c.Request().Context(), &a)
	if err != nil {
		if errors.Is(err, ErrUnknownPatient) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	if status := c.QueryParam("status"); status != "" {
		out, err := h.svc.ByStatus(c.Request().Context(), status)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(http.StatusOK, out)
	}
	out, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "skin analysis not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ByPatient(c echo.Context) error {
	patientID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	out, err := h.svc.ByPatient(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch SkinAnalysisPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if a == nil {
		return echo.NewHTTPError(http.StatusNotFound, "skin analysis not found")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	removed, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "skin analysis not found")
	}
	return c.NoContent(http.StatusNoContent)
}

type requestReviewBody struct {
	ExpertID int64 `json:"expert_id"`
}

func (h *Handler) RequestReview(c echo.Context) error {
	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req requestReviewBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.RequestReview(c.Request().Context(), analysisID, req.ExpertID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownAnalysis):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotExpert):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *Handler) MyValidations(c echo.Context) error {
	expertID := auth.UserIDFromContext(c.Request().Context())
	if expertID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	out, err := h.svc.ValidationsByExpert(c.Request().Context(), expertID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ValidationsByAnalysis(c echo.Context) error {
	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	out, err := h.svc.ValidationsByAnalysis(c.Request().Context(), analysisID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

type completeReviewBody struct {
	Status        string             `json:"status"`
	ExpertResults []analyzer.Finding `json:"expert_results"`
	Comments      *string            `json:"comments"`
}

func (h *Handler) CompleteReview(c echo.Context) error {
	validationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeReviewBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.CompleteReview(c.Request().Context(), validationID, req.Status, req.ExpertResults, req.Comments)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

type questionnaireBody struct {
	Answers json.RawMessage `json:"answers"`
}

func (h *Handler) AttachQuestionnaire(c echo.Context) error {
	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req questionnaireBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	q, err := h.svc.AttachQuestionnaire(c.Request().Context(), analysisID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownAnalysis):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrQuestionnaireExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, q)
}

func (h *Handler) GetQuestionnaire(c echo.Context) error {
	analysisID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	q, err := h.svc.QuestionnaireByAnalysis(c.Request().Context(), analysisID)
	if err != nil {
		return err
	}
	if q == nil {
		return echo.NewHTTPError(http.StatusNotFound, "questionnaire not found")
	}
	return c.JSON(http.StatusOK, q)
}

func (h *Handler) MyNotifications(c echo.Context) error {
	expertID := auth.UserIDFromContext(c.Request().Context())
	if expertID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}
	unreadOnly := c.QueryParam("unread") == "true"
	out, err := h.svc.NotificationsByExpert(c.Request().Context(), expertID, unreadOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) MarkNotificationRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := h.svc.MarkNotificationRead(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if n == nil {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.JSON(http.StatusOK, n)
}
