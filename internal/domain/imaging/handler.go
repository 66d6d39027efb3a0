// Package imaging exposes the image upload/download endpoints backed by the
// blob store. Uploaded skin photos are referenced by skin analyses through
// their returned URL.
package imaging

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dermaclinic/dermaclinic/internal/domain/identity"
	"github.com/dermaclinic/dermaclinic/internal/platform/auth"
	"github.com/dermaclinic/dermaclinic/internal/platform/blobstore"
)

type Handler struct {
	store blobstore.ImageStore
}

func NewHandler(store blobstore.ImageStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	staff := api.Group("", auth.RequireRole(identity.RoleAssistant))
	staff.POST("/images", h.Upload)
	staff.GET("/images/:id", h.Download)

	doctors := api.Group("", auth.RequireRole())
	doctors.DELETE("/images/:id", h.Delete)
}

// Upload accepts a multipart form with a "file" part and optional
// "patient_id" and "category" fields.
func (h *Handler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file part")
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	meta := blobstore.ImageMetadata{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Category:    c.FormValue("category"),
	}
	if pid := c.FormValue("patient_id"); pid != "" {
		id, err := strconv.ParseInt(pid, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		meta.PatientID = id
	}

	stored, err := h.store.Put(c.Request().Context(), meta, src)
	if err != nil {
		switch {
		case errors.Is(err, blobstore.ErrInvalidContentType):
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, blobstore.ErrFileTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"image": stored,
		"url":   fmt.Sprintf("/api/v1/images/%s", stored.ID),
	})
}

func (h *Handler) Download(c echo.Context) error {
	meta, body, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, blobstore.ErrImageNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	defer body.Close()
	return c.Stream(http.StatusOK, meta.ContentType, body)
}

func (h *Handler) Delete(c echo.Context) error {
	removed, err := h.store.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	return c.NoContent(http.StatusNoContent)
}
