package casefile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/domain/consultation"
	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/study"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

// buildDefaults prefills every section from the questionnaire plus the
// latest consultation and study. Blanks stay as underscore placeholders
// so the presenter sees what is missing.
func buildDefaults(p *patient.Patient, lastCons *consultation.Consultation, lastStudy *study.Study) *Presentation {
	pr := &Presentation{PatientID: p.ID}
	pr.Intro = joined(introLines(p, lastCons))
	pr.PhysicalExam = joined(physicalLines(p))
	pr.RespiratoryTests = strptr("Completar FVC, FEV1, TLC, RV, DLCO, DLCO/VA.")
	pr.Immunology = joined(immunologyLines(lastCons))
	pr.Exposures = joined(exposureLines(p))
	pr.Imaging = joined(imagingLines(lastStudy))
	pr.Notes = strptr("")
	return pr
}

func introLines(p *patient.Patient, lastCons *consultation.Consultation) []string {
	lines := []string{
		fmt.Sprintf("Edad: %s años", orBlank(intStr(p.Age), "___")),
		fmt.Sprintf("Sexo: %s", orBlank(deref(p.Sex), "___")),
	}
	motivo := ""
	if lastCons != nil && lastCons.Notes != nil {
		motivo = *lastCons.Notes
	}
	lines = append(lines,
		fmt.Sprintf("Motivo de presentación/pregunta: %s", orBlank(motivo, "_____________________________")),
		fmt.Sprintf("Antecedentes relevantes: %s", deref(p.Antecedentes)),
		fmt.Sprintf("Tabaquismo actual: %s | Tabaquismo previo: %s | IPA: %s",
			yesNo(p.SmokingCurrent), yesNo(p.SmokingPrevious), orBlank(floatStr(p.SmokingPackYears), "___")),
		fmt.Sprintf("Otros antecedentes/comorbilidades: %s", deref(p.ClinicaActual)),
		fmt.Sprintf("Medicacion concomitante: %s", deref(p.CurrentMedications)),
	)
	return lines
}

func physicalLines(p *patient.Patient) []string {
	lines := []string{
		"Saturación de oxigeno: __________",
		fmt.Sprintf("Crepitantes velcro: %s | Clubbing: %s | Signos HTP: %s",
			yesNo(p.PhysicalCrepitacionesVelcro), yesNo(p.PhysicalClubbing),
			yesNo(p.PhysicalPulmonaryHypertensionSigns)),
	}
	if sistemicos := listcodec.Decode(p.SystemicSymptoms); len(sistemicos) > 0 {
		lines = append(lines, "Signos clínicos autoinmunes: "+strings.Join(sistemicos, ", "))
	} else {
		lines = append(lines, "Signos clínicos autoinmunes: _____________________________")
	}
	return lines
}

func immunologyLines(lastCons *consultation.Consultation) []string {
	var lines []string
	if lastCons != nil {
		if g := deref(lastCons.LabGeneral); g != "" {
			lines = append(lines, g)
		}
		if codes := listcodec.Decode(lastCons.LabImmunology); len(codes) > 0 {
			labels := make([]string, len(codes))
			for i, code := range codes {
				labels[i] = catalog.ImmunoLabel(code)
			}
			lines = append(lines, "Autoinmunidad: "+strings.Join(labels, ", "))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "Registrar FAN, FR, Anti CCP, ANCA, PCR, VSG, CPK, Aldolasa.")
	}
	return lines
}

// exposureLines uses the hypersensitivity-pneumonitis questionnaire
// wording rather than the generic catalog labels.
func exposureLines(p *patient.Patient) []string {
	var lines []string
	if home := matchedLabels(p.DomesticExposures, catalog.DomesticLabels); len(home) > 0 {
		lines = append(lines, "Hogar: "+strings.Join(home, ", "))
	}
	if work := matchedLabels(p.OccupationalJobs, catalog.LaboralLabels); len(work) > 0 {
		lines = append(lines, "Laboral: "+strings.Join(work, ", "))
	}
	if d := deref(p.DomesticExposuresDetails); d != "" {
		lines = append(lines, "Detalle adicional: "+d)
	}
	if len(lines) == 0 {
		lines = append(lines, "Sin exposiciones de riesgo declaradas.")
	}
	return lines
}

func imagingLines(lastStudy *study.Study) []string {
	if lastStudy == nil {
		return []string{"Sin estudios registrados."}
	}
	lines := []string{fmt.Sprintf("Último estudio: %s - %s - %s",
		orBlank(lastStudy.StudyType, "---"), orBlank(deref(lastStudy.Date), "---"),
		orBlank(deref(lastStudy.Center), "---"))}
	if d := deref(lastStudy.Description); d != "" {
		lines = append(lines, d)
	}
	if url := catalog.PortalLink(deref(lastStudy.Center)); url != "" {
		lines = append(lines, "Portal: "+url)
	}
	if code := deref(lastStudy.AccessCode); code != "" {
		lines = append(lines, "Número de acceso: "+code)
	}
	return lines
}

// matchedLabels returns the labels of the catalog entries whose values
// appear in the stored list, preserving catalog order.
func matchedLabels(stored *string, options []catalog.Pair) []string {
	selected := make(map[string]bool)
	for _, v := range listcodec.Decode(stored) {
		selected[v] = true
	}
	var labels []string
	for _, opt := range options {
		if selected[opt.Value] {
			labels = append(labels, opt.Label)
		}
	}
	return labels
}

func joined(lines []string) *string {
	s := strings.Join(lines, "\n")
	return &s
}

func yesNo(v bool) string {
	if v {
		return "SI"
	}
	return "NO"
}

func orBlank(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intStr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatStr(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func strptr(s string) *string { return &s }
