package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/domain/user"
)

type mockRecipientSource struct {
	users []*user.User
}

func (m *mockRecipientSource) ListApproved(_ context.Context) ([]*user.User, error) {
	return m.users, nil
}

func TestFormOptions(t *testing.T) {
	recipients := &mockRecipientSource{users: []*user.User{
		{ID: uuid.New(), FullName: "Dr. Diaz"},
		{ID: uuid.New(), FullName: "Dra. Lopez"},
	}}
	h := &Handler{catalogs: catalog.Defaults(), recipients: recipients}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/patients/form-options", nil)
	rec := httptest.NewRecorder()
	if err := h.FormOptions(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var opts FormOptions
	if err := json.Unmarshal(rec.Body.Bytes(), &opts); err != nil {
		t.Fatal(err)
	}
	if len(opts.RespiratoryOptions) == 0 || len(opts.DomesticExposureOptions) == 0 {
		t.Error("catalog option lists should not be empty")
	}
	if len(opts.MMRCOptions) != 5 || opts.MMRCOptions[0] != 0 || opts.MMRCOptions[4] != 4 {
		t.Errorf("mmrc options = %v", opts.MMRCOptions)
	}
	if len(opts.StudyTypeOptions) == 0 || opts.StudyTypeOptions[0] != "TC torax" {
		t.Errorf("study types = %v", opts.StudyTypeOptions)
	}
	if len(opts.ReviewRecipients) != 2 || opts.ReviewRecipients[0].FullName != "Dr. Diaz" {
		t.Errorf("recipients = %v", opts.ReviewRecipients)
	}

	all := catalog.ImmunoLabAll()
	if len(opts.ImmunoRows) != (len(all)+1)/2 {
		t.Fatalf("immuno rows = %d", len(opts.ImmunoRows))
	}
	if opts.ImmunoRows[0][0].Value != "fan_hep2_1" {
		t.Errorf("first immuno row = %v", opts.ImmunoRows[0])
	}
	for i, row := range opts.ImmunoRows {
		if len(row) > 2 || len(row) == 0 {
			t.Errorf("row %d has %d entries", i, len(row))
		}
	}
}
