package screening

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

// Eligibility is the basic screening criteria check (age 50 or older,
// current or previous smoker, 20 or more pack-years). Reasons always
// carries one line per criterion, satisfied or not.
type Eligibility struct {
	Met     bool     `json:"met"`
	Reasons []string `json:"reasons"`
}

// ComputeEligibility evaluates the three criteria against the patient's
// questionnaire.
func ComputeEligibility(p *patient.Patient) Eligibility {
	var reasons []string

	ageOK := p.Age != nil && *p.Age >= 50
	if ageOK {
		reasons = append(reasons, fmt.Sprintf("Edad %d años (≥50)", *p.Age))
	} else {
		age := "---"
		if p.Age != nil {
			age = strconv.Itoa(*p.Age)
		}
		reasons = append(reasons, fmt.Sprintf("Edad %s (se requiere ≥50)", age))
	}

	if p.IsSmoker() {
		reasons = append(reasons, "Antecedente de tabaquismo (actual o previo)")
	} else {
		reasons = append(reasons, "Sin antecedente de tabaquismo")
	}

	ipaOK := p.SmokingPackYears != nil && *p.SmokingPackYears >= 20
	if ipaOK {
		reasons = append(reasons, fmt.Sprintf("IPA %g (≥20)", *p.SmokingPackYears))
	} else {
		ipa := "---"
		if p.SmokingPackYears != nil {
			ipa = formatFloat(*p.SmokingPackYears)
		}
		reasons = append(reasons, fmt.Sprintf("IPA %s (se requiere ≥20)", ipa))
	}

	return Eligibility{Met: ageOK && p.IsSmoker() && ipaOK, Reasons: reasons}
}

// PrefillNCCN builds the default NCCN criteria text for an empty sheet:
// eligibility status, smoking summary, and the relevant questionnaire
// antecedents.
func PrefillNCCN(p *patient.Patient, cats *catalog.Catalogs, el Eligibility) string {
	status := "No cumple criterios básicos (edad≥50, tabaquismo, IPA≥20)"
	if el.Met {
		status = "Cumple criterios básicos (edad≥50, tabaquismo, IPA≥20)"
	}
	smoking := "No fumador"
	if p.SmokingCurrent {
		smoking = "Fumador actual"
	} else if p.SmokingPrevious {
		smoking = "Ex fumador"
	}
	ipa := "---"
	if p.SmokingPackYears != nil && *p.SmokingPackYears != 0 {
		ipa = formatFloat(*p.SmokingPackYears)
	}
	text := fmt.Sprintf("%s. %s. IPA: %s.", status, smoking, ipa)
	if lines := antecedentLines(p, cats); len(lines) > 0 {
		text += " " + strings.Join(lines, " ")
	}
	return text
}

// PrefillFindings summarizes the questionnaire antecedents for an empty
// findings field.
func PrefillFindings(p *patient.Patient, cats *catalog.Catalogs) string {
	return strings.Join(antecedentLines(p, cats), " | ")
}

func antecedentLines(p *patient.Patient, cats *catalog.Catalogs) []string {
	var lines []string
	appendLabeled := func(prefix string, encoded *string, pairs []catalog.Pair) {
		values := listcodec.Decode(encoded)
		if len(values) == 0 {
			return
		}
		labels := make([]string, 0, len(values))
		for _, v := range values {
			labels = append(labels, catalog.Label(pairs, v))
		}
		lines = append(lines, prefix+strings.Join(labels, ", "))
	}
	appendLabeled("Antecedentes respiratorios: ", p.RespiratoryConditions, cats.RespiratoryConditions)
	appendLabeled("Exposición ocupacional: ", p.OccupationalExposureTypes, cats.OccupationalExposures)
	appendLabeled("Trabajos/ocupaciones: ", p.OccupationalJobs, cats.OccupationalJobs)
	appendLabeled("Exposiciones domiciliarias: ", p.DomesticExposures, cats.DomesticExposures)
	return lines
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
