package patient

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

type Handler struct {
	svc        *Service
	catalogs   *catalog.Catalogs
	recipients RecipientSource
}

func NewHandler(svc *Service, catalogs *catalog.Catalogs, recipients RecipientSource) *Handler {
	return &Handler{svc: svc, catalogs: catalogs, recipients: recipients}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/patients", h.List)
	g.GET("/patients/form-options", h.FormOptions)
	g.POST("/patients", h.Create)
	g.GET("/patients/:id", h.Get)
	g.GET("/patients/:id/summary", h.Summary)
	g.PUT("/patients/:id", h.Update)
	g.DELETE("/patients/:id", h.Delete)
	g.POST("/patients/:id/genogram", h.UploadGenogram)
	g.GET("/patients/:id/genogram", h.DownloadGenogram)

	g.GET("/patients/export/summary", h.ExportCSV, auth.RequireAdmin())
}

func (h *Handler) List(c echo.Context) error {
	patients, err := h.svc.List(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) Create(c echo.Context) error {
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	p, err := h.svc.CreateFromForm(ctx, forms.FromURLValues(values), editorID(c), actorFromContext(c))
	if err != nil {
		return mapFormError(err)
	}

	// optional genogram in the same multipart submit
	if fh, ferr := c.FormFile("family_genogram_file"); ferr == nil && fh != nil {
		if updated, gerr := h.svc.AttachGenogram(ctx, p.ID, fh, actorFromContext(c)); gerr == nil {
			p = updated
		}
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	return c.JSON(http.StatusOK, p)
}

// Summary resolves the list-encoded sections to display labels, the shape
// the detail and print views render.
func (h *Handler) Summary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	labels := func(stored *string, list []catalog.Pair) []string {
		values := listcodec.Decode(stored)
		out := make([]string, 0, len(values))
		for _, v := range values {
			out = append(out, catalog.Label(list, v))
		}
		return out
	}
	portal := ""
	if p.Center != nil {
		portal = catalog.PortalLink(*p.Center)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient":                p,
		"respiratory_conditions": labels(p.RespiratoryConditions, h.catalogs.RespiratoryConditions),
		"autoimmune_conditions":  labels(p.AutoimmuneConditions, h.catalogs.AutoimmuneConditions),
		"systemic_symptoms":      labels(p.SystemicSymptoms, h.catalogs.SystemicSymptoms),
		"occupational_exposures": labels(p.OccupationalExposureTypes, h.catalogs.OccupationalExposures),
		"occupational_jobs":      labels(p.OccupationalJobs, h.catalogs.OccupationalJobs),
		"domestic_exposures":     labels(p.DomesticExposures, h.catalogs.DomesticExposures),
		"drug_use":               labels(p.DrugUse, h.catalogs.IllicitDrugs),
		"pneumotoxic_drugs":      labels(p.PneumotoxicDrugs, h.catalogs.PneumotoxicDrugs),
		"center_portal_link":     portal,
	})
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	values, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateFromForm(c.Request().Context(), id, forms.FromURLValues(values), editorID(c), actorFromContext(c))
	if err != nil {
		return mapFormError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, actorFromContext(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("could not delete patient: %v", err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UploadGenogram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	p, err := h.svc.AttachGenogram(c.Request().Context(), id, fh, actorFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DownloadGenogram(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	path, name, err := h.svc.GenogramPath(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.Attachment(path, name)
}

// ExportCSV streams the admin patient summary.
func (h *Handler) ExportCSV(c echo.Context) error {
	patients, err := h.svc.List(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=pacientes_resumen.csv`)
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	header := []string{"Centro", "Ciudad", "Sexo", "Edad", "Consumo actual", "Ex fumador",
		"IPA", "Patologias respiratorias", "Consentimiento", "Fecha consentimiento"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, p := range patients {
		conditions := listcodec.Decode(p.RespiratoryConditions)
		row := []string{
			deref(p.Center), deref(p.City), deref(p.Sex), derefInt(p.Age),
			yesNo(p.SmokingCurrent), yesNo(p.SmokingPrevious), derefFloat(p.SmokingPackYears),
			strings.Join(conditions, "; "), yesNo(p.ConsentGiven), deref(p.ConsentDate),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func mapFormError(err error) error {
	var dup *ErrDuplicateDNI
	if errors.As(err, &dup) {
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"message":     dup.Error(),
			"existing_id": dup.ExistingID.String(),
		})
	}
	var val *ErrValidation
	if errors.As(err, &val) {
		return echo.NewHTTPError(http.StatusBadRequest, val.Error())
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
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

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func derefFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func yesNo(v bool) string {
	if v {
		return "Si"
	}
	return "No"
}
