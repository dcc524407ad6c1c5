package patient

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/domain/user"
)

// RecipientSource lists the approved accounts offered in the
// review-recipient selector, ordered by full name.
type RecipientSource interface {
	ListApproved(ctx context.Context) ([]*user.User, error)
}

// Recipient is one selectable reviewer.
type Recipient struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

// FormOptions is everything the patient and consultation forms need to
// render their selects and checkbox groups in one request.
type FormOptions struct {
	RespiratoryOptions          []catalog.Pair   `json:"respiratory_options"`
	AutoimmuneOptions           []catalog.Pair   `json:"autoimmune_options"`
	SymptomOptions              []catalog.Pair   `json:"symptom_options"`
	OccupationalExposureOptions []catalog.Pair   `json:"occupational_exposure_options"`
	OccupationalJobOptions      []catalog.Pair   `json:"occupational_job_options"`
	DomesticExposureOptions     []catalog.Pair   `json:"domestic_exposure_options"`
	IllicitDrugOptions          []catalog.Pair   `json:"illicit_drug_options"`
	PneumotoxicDrugOptions      []catalog.Pair   `json:"pneumotoxic_drug_options"`
	CenterOptions               []string         `json:"center_options"`
	MMRCOptions                 []int            `json:"mmrc_options"`
	StudyTypeOptions            []string         `json:"study_type_options"`
	ReviewRecipients            []Recipient      `json:"review_recipients"`
	ImmunoRows                  [][]catalog.Pair `json:"immuno_rows"`
}

func (h *Handler) FormOptions(c echo.Context) error {
	var recipients []Recipient
	if h.recipients != nil {
		users, err := h.recipients.ListApproved(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		recipients = make([]Recipient, 0, len(users))
		for _, u := range users {
			recipients = append(recipients, Recipient{ID: u.ID, FullName: u.FullName})
		}
	}
	return c.JSON(http.StatusOK, FormOptions{
		RespiratoryOptions:          h.catalogs.RespiratoryConditions,
		AutoimmuneOptions:           h.catalogs.AutoimmuneConditions,
		SymptomOptions:              h.catalogs.SystemicSymptoms,
		OccupationalExposureOptions: h.catalogs.OccupationalExposures,
		OccupationalJobOptions:      h.catalogs.OccupationalJobs,
		DomesticExposureOptions:     h.catalogs.DomesticExposures,
		IllicitDrugOptions:          h.catalogs.IllicitDrugs,
		PneumotoxicDrugOptions:      h.catalogs.PneumotoxicDrugs,
		CenterOptions:               h.catalogs.Centers,
		MMRCOptions:                 catalog.MMRCOptions,
		StudyTypeOptions:            catalog.StudyTypes,
		ReviewRecipients:            recipients,
		ImmunoRows:                  immunoRows(),
	})
}

// immunoRows chunks the immunology panel into pairs for the two-column
// titer grid.
func immunoRows() [][]catalog.Pair {
	all := catalog.ImmunoLabAll()
	rows := make([][]catalog.Pair, 0, (len(all)+1)/2)
	for i := 0; i < len(all); i += 2 {
		end := i + 2
		if end > len(all) {
			end = len(all)
		}
		rows = append(rows, all[i:end])
	}
	return rows
}
