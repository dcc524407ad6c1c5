package resource

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/resources", h.List)
	g.POST("/resources", h.Create)
	g.GET("/resources/:id", h.Get)
	g.DELETE("/resources/:id", h.Delete)
	g.GET("/resources/:id/file", h.Download)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Create(c echo.Context) error {
	in := Input{Title: c.FormValue("title")}
	if v := c.FormValue("url"); v != "" {
		in.URL = &v
	}
	if v := c.FormValue("notes"); v != "" {
		in.Notes = &v
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fh = nil
	}
	r, err := h.svc.Create(c.Request().Context(), in, fh, editorID(c), actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, actorFromContext(c)); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Download(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	path, name, err := h.svc.FilePath(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.Attachment(path, name)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrTitleRequired), errors.Is(err, uploads.ErrExtension):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoFile), errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return err
}

func editorID(c echo.Context) *uuid.UUID {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return nil
	}
	return &id
}

func actorFromContext(c echo.Context) *audit.Actor {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return nil
	}
	return &audit.Actor{ID: id.String(), Name: auth.NameFromContext(ctx)}
}
