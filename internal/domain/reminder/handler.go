package reminder

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/controls", h.Open)
	g.GET("/patients/:patientID/controls", h.ListByPatient)
	g.POST("/patients/:patientID/controls", h.Create)
	g.POST("/controls/:id/complete", h.Complete)
	g.POST("/controls/:id/progress", h.Progress)
	g.DELETE("/controls/:id", h.Delete)
}

type createRequest struct {
	ControlDate    string `json:"control_date" form:"control_date"`
	ExtraEmails    string `json:"extra_emails" form:"extra_emails"`
	ConsultationID string `json:"consultation_id" form:"consultation_id"`
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var extra *string
	if e := strings.TrimSpace(req.ExtraEmails); e != "" {
		extra = &e
	}
	err = h.svc.Schedule(c.Request().Context(), patientID, optionalUUID(req.ConsultationID),
		strings.TrimSpace(req.ControlDate), extra, editorID(c))
	if err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) Open(c echo.Context) error {
	userID := editorID(c)
	if userID == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	items, err := h.svc.Open(c.Request().Context(), *userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.setStatus(c, h.svc.Complete)
}

func (h *Handler) Progress(c echo.Context) error {
	return h.setStatus(c, h.svc.Progress)
}

func (h *Handler) setStatus(c echo.Context, fn func(ctx context.Context, id uuid.UUID, userID *uuid.UUID, actor *audit.Actor) (*ControlReminder, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cr, err := fn(c.Request().Context(), id, editorID(c), actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, cr)
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

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrDateRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotAllowed):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, "control not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func optionalUUID(raw string) *uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &id
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
	return &audit.Actor{ID: auth.UserIDFromContext(ctx), Name: auth.NameFromContext(ctx)}
}
