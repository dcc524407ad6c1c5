package screening

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients/:patientID/screening", h.GetSheet)
	g.PUT("/patients/:patientID/screening", h.UpdateSheet)
	g.POST("/patients/:patientID/screening/file", h.UploadSheetFile)
	g.GET("/patients/:patientID/screening/file", h.DownloadSheetFile)

	g.POST("/patients/:patientID/screening/followups", h.AddFollowup)
	g.PUT("/screening-followups/:id", h.UpdateFollowup)
	g.DELETE("/screening-followups/:id", h.DeleteFollowup)
	g.POST("/screening-followups/:id/complete", h.CompleteFollowup)
	g.POST("/screening-followups/:id/progress", h.ProgressFollowup)
	g.POST("/screening-followups/:id/file", h.UploadFollowupFile)
	g.GET("/screening-followups/:id/file", h.DownloadFollowupFile)
}

func (h *Handler) GetSheet(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sheet, err := h.svc.GetOrCreate(c.Request().Context(), patientID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, sheet)
}

func (h *Handler) UpdateSheet(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	sheet, err := h.svc.UpdateSheet(ctx, patientID, ParseSheetForm(forms.FromURLValues(values)), actorFromContext(c))
	if err != nil {
		return mapError(err)
	}

	// optional report in the same multipart submit
	if fh, ferr := c.FormFile("study_file"); ferr == nil && fh != nil {
		sc, uerr := h.svc.AttachSheetFile(ctx, patientID, fh, actorFromContext(c))
		if uerr != nil {
			return mapError(uerr)
		}
		sheet.Screening = sc
	}
	return c.JSON(http.StatusOK, sheet)
}

func (h *Handler) UploadSheetFile(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	fh, err := c.FormFile("study_file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "study_file is required")
	}
	sc, err := h.svc.AttachSheetFile(c.Request().Context(), patientID, fh, actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, sc)
}

func (h *Handler) DownloadSheetFile(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	path, name, err := h.svc.SheetFilePath(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.Attachment(path, name)
}

func (h *Handler) AddFollowup(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	fu, err := h.svc.AddFollowup(ctx, patientID, ParseFollowupForm(forms.FromURLValues(values)), editorID(c), actorFromContext(c))
	if err != nil {
		return mapError(err)
	}

	if fh, ferr := c.FormFile("file"); ferr == nil && fh != nil {
		if updated, uerr := h.svc.AttachFollowupFile(ctx, fu.ID, fh, actorFromContext(c)); uerr == nil {
			fu = updated
		}
	}
	return c.JSON(http.StatusCreated, fu)
}

func (h *Handler) UpdateFollowup(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fu, err := h.svc.UpdateFollowup(c.Request().Context(), id, ParseFollowupForm(forms.FromURLValues(values)), actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, fu)
}

func (h *Handler) DeleteFollowup(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteFollowup(c.Request().Context(), id, actorFromContext(c)); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CompleteFollowup(c echo.Context) error {
	return h.setFollowupStatus(c, h.svc.CompleteFollowup)
}

func (h *Handler) ProgressFollowup(c echo.Context) error {
	return h.setFollowupStatus(c, h.svc.ProgressFollowup)
}

func (h *Handler) setFollowupStatus(c echo.Context, fn func(ctx context.Context, id uuid.UUID, userID *uuid.UUID, actor *audit.Actor) (*Followup, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	fu, err := fn(c.Request().Context(), id, editorID(c), actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, fu)
}

func (h *Handler) UploadFollowupFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	fu, err := h.svc.AttachFollowupFile(c.Request().Context(), id, fh, actorFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, fu)
}

func (h *Handler) DownloadFollowupFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	path, name, err := h.svc.FollowupFilePath(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.Attachment(path, name)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrFollowupFields):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotAllowed):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, uploads.ErrExtension):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, pgx.ErrNoRows):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
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
