package review

import (
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
	g.GET("/reviews", h.Inbox)
	g.POST("/patients/:patientID/reviews", h.Create)
	g.GET("/patients/:patientID/reviews", h.ListByPatient)
	g.GET("/reviews/:id", h.Get)
	g.POST("/reviews/:id/resolve", h.Resolve)
	g.POST("/reviews/:id/progress", h.Progress)
	g.POST("/reviews/:id/comments", h.AddComment)
	g.GET("/reviews/:id/comments", h.ListComments)
	g.PUT("/review-comments/:id", h.EditComment)
	g.DELETE("/review-comments/:id", h.DeleteComment)
}

type createRequest struct {
	Recipients     []string `json:"recipients" form:"recipients"`
	Message        string   `json:"message" form:"message"`
	ConsultationID string   `json:"consultation_id" form:"consultation_id"`
	StudyID        string   `json:"study_id" form:"study_id"`
}

func (h *Handler) Create(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var recipients []uuid.UUID
	for _, raw := range req.Recipients {
		if id, perr := uuid.Parse(strings.TrimSpace(raw)); perr == nil {
			recipients = append(recipients, id)
		}
	}
	var message *string
	if m := strings.TrimSpace(req.Message); m != "" {
		message = &m
	}
	rr, err := h.svc.Request(c.Request().Context(), patientID,
		optionalUUID(req.ConsultationID), optionalUUID(req.StudyID),
		recipients, message, userID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, rr)
}

func (h *Handler) Inbox(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	items, err := h.svc.Inbox(c.Request().Context(), userID)
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

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "review not found")
	}
	return c.JSON(http.StatusOK, rr)
}

func (h *Handler) Resolve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	rr, err := h.svc.Resolve(c.Request().Context(), id, userID, actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rr)
}

func (h *Handler) Progress(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	rr, err := h.svc.Progress(c.Request().Context(), id, userID, actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rr)
}

type commentRequest struct {
	Message string `json:"message" form:"message"`
}

func (h *Handler) AddComment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cm, err := h.svc.AddComment(c.Request().Context(), id, userID, req.Message, actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, cm)
}

func (h *Handler) ListComments(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.Comments(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) EditComment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cm, err := h.svc.EditComment(c.Request().Context(), id, userID, req.Message, actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, cm)
}

func (h *Handler) DeleteComment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	userID, ok := currentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	if err := h.svc.DeleteComment(c.Request().Context(), id, userID, actorFromContext(c)); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNoRecipients), errors.Is(err, ErrEmptyComment):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotAllowed):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
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

func currentUserID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func actorFromContext(c echo.Context) *audit.Actor {
	ctx := c.Request().Context()
	return &audit.Actor{ID: auth.UserIDFromContext(ctx), Name: auth.NameFromContext(ctx)}
}
