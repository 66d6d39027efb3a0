package medication

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/platform/auth"
	"github.com/dermaclinic/dermaclinic/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// The catalog is readable by every authenticated role.
	api.GET("/medications", h.List)
	api.GET("/medications/:id", h.Get)

	staff := api.Group("", auth.RequireRole(identity.RoleAssistant))
	staff.POST("/medications", h.Create)
	staff.PATCH("/medications/:id", h.Update)
	staff.POST("/medications/:id/restock", h.Restock)

	doctors := api.Group("", auth.RequireRole())
	doctors.DELETE("/medications/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	if category := c.QueryParam("category"); category != "" {
		out, err := h.svc.ByCategory(c.Request().Context(), category)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, out)
	}
	out, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	lo, hi := page.Slice(len(out))
	return c.JSON(http.StatusOK, pagination.NewResponse(out[lo:hi], len(out), page.Limit, page.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if m == nil {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Create(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), &m)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var patch MedicationPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if m == nil {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
}

type restockRequest struct {
	InStock bool `json:"in_stock"`
}

func (h *Handler) Restock(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Restock(c.Request().Context(), id, req.InStock)
	if err != nil {
		return err
	}
	if m == nil {
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.JSON(http.StatusOK, m)
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
		return echo.NewHTTPError(http.StatusNotFound, "medication not found")
	}
	return c.NoContent(http.StatusNoContent)
}
