// Package catalog provides the configurable option lists used to populate
// clinical form controls. Defaults are compiled in; an optional JSON file
// overrides individual lists by key. A broken override file is reported
// and ignored, startup always succeeds with defaults.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Pair is one selectable option, a stable stored value plus its display label.
type Pair struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalogs holds every configurable option list.
type Catalogs struct {
	Centers               []string
	RespiratoryConditions []Pair
	AutoimmuneConditions  []Pair
	SystemicSymptoms      []Pair
	OccupationalExposures []Pair
	OccupationalJobs      []Pair
	DomesticExposures     []Pair
	IllicitDrugs          []Pair
	PneumotoxicDrugs      []Pair
}

// overrideFile mirrors the JSON override layout. Keys absent from the file
// keep their defaults; keys present but not arrays are rejected per key.
type overrideFile map[string]json.RawMessage

// Load builds the catalog set, applying overrides from path when the file
// exists and parses. Never returns an error.
func Load(path string) *Catalogs {
	c := Defaults()
	if path == "" {
		return c
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", path).Msg("could not read catalog override")
		}
		return c
	}
	var ov overrideFile
	if err := json.Unmarshal(raw, &ov); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("could not parse catalog override")
		return c
	}

	overrideStrings(ov, "centers", &c.Centers)
	overridePairs(ov, "respiratory_conditions", &c.RespiratoryConditions)
	overridePairs(ov, "autoimmune_conditions", &c.AutoimmuneConditions)
	overridePairs(ov, "systemic_symptoms", &c.SystemicSymptoms)
	overridePairs(ov, "occupational_exposures", &c.OccupationalExposures)
	overridePairs(ov, "occupational_jobs", &c.OccupationalJobs)
	overridePairs(ov, "domestic_exposures", &c.DomesticExposures)
	overridePairs(ov, "illicit_drugs", &c.IllicitDrugs)
	overridePairs(ov, "pneumotoxic_drugs", &c.PneumotoxicDrugs)
	return c
}

func overrideStrings(ov overrideFile, key string, dst *[]string) {
	raw, ok := ov[key]
	if !ok {
		return
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Warn().Str("key", key).Msg(fmt.Sprintf("catalog override key %q is not a string list, keeping default", key))
		return
	}
	*dst = list
}

func overridePairs(ov overrideFile, key string, dst *[]Pair) {
	raw, ok := ov[key]
	if !ok {
		return
	}
	var list []Pair
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Warn().Str("key", key).Msg(fmt.Sprintf("catalog override key %q is not an option list, keeping default", key))
		return
	}
	*dst = list
}

// Label resolves a stored value to its display label within a list,
// falling back to the value itself.
func Label(list []Pair, value string) string {
	for _, p := range list {
		if p.Value == value {
			return p.Label
		}
	}
	return value
}

// Defaults returns a fresh copy of the compiled-in catalogs.
func Defaults() *Catalogs {
	return &Catalogs{
		Centers: []string{
			"Sanatorio Cruz Azul",
			"Clinica de Especialidades",
			"Hospital Regional Pasteur",
			"Clinica San Martin",
			"Sanatorio de la Canada",
			"Roentgen",
		},
		RespiratoryConditions: []Pair{
			{"asma", "Asma"},
			{"epoc", "EPOC"},
			{"tb_previa", "TB previa"},
			{"neumonias_repeticion", "Neumonias de repeticion"},
			{"neumotorax", "Neumotorax"},
			{"sahos", "SAHOS"},
			{"hta", "Hipertension arterial"},
			{"coronaria", "Cardiopatia coronaria"},
			{"icc", "Insuficiencia cardiaca"},
			{"diabetes", "Diabetes"},
			{"erge", "ERGE o hernia hiatal"},
		},
		AutoimmuneConditions: []Pair{
			{"artritis_reumatoidea", "Artritis reumatoidea"},
			{"sjogren", "Sjogren"},
			{"esclerodermia", "Esclerodermia"},
			{"dermatomiositis_polimiositis", "Dermato/Polimiositis"},
			{"les", "LES"},
			{"hipogammaglobulinemia", "Hipogammaglobulinemia"},
		},
		SystemicSymptoms: []Pair{
			{"poliartralgias", "Poliartralgias"},
			{"artritis", "Artritis"},
			{"edema_manos", "Edema en manos"},
			{"rigidez_matinal", "Rigidez matinal >30 min"},
			{"fotosensibilidad", "Fotosensibilidad"},
			{"aranas_vasculares", "Aranas vasculares en manos"},
			{"telangiectasias", "Telangiectasias"},
			{"xerostomia", "Xerostomia"},
			{"xeroftalmia", "Xeroftalmia"},
			{"ulceras_orales", "Ulceras orales"},
			{"alopecia", "Alopecia"},
			{"debilidad_muscular", "Debilidad muscular"},
			{"fenomeno_raynaud", "Fenomeno de Raynaud"},
			{"mano_mecanico", "Mano de mecanico"},
			{"gottron", "Papulas de Gottron"},
			{"esclerosis_limitada", "Esclerosis limitada"},
			{"esclerosis_difusa", "Esclerosis difusa"},
			{"perdida_peso", "Perdida de peso"},
		},
		OccupationalExposures: []Pair{
			{"humos", "Humos"},
			{"vapores", "Vapores"},
			{"polvo", "Polvo"},
			{"quimicos", "Quimicos"},
		},
		OccupationalJobs: []Pair{
			{"enarenador", "Enarenador"},
			{"construccion", "Construccion"},
			{"plomeria", "Plomeria"},
			{"mantenimiento", "Mantenimiento"},
			{"carreteras", "Carreteras"},
			{"aislacion", "Aislacion"},
			{"demolicion", "Demolicion"},
			{"pulido", "Pulido"},
			{"fundicion", "Fundicion"},
			{"ceramica", "Ceramica"},
			{"metalurgica", "Metalurgica"},
			{"soldador", "Soldador"},
			{"baterias", "Baterias"},
			{"textil", "Textil"},
			{"algodon", "Algodon"},
			{"carpinteria_madera", "Carpinteria de madera"},
			{"carpinteria_metalica", "Carpinteria metalica"},
			{"plasticos", "Plasticos"},
			{"pintura", "Pintura"},
			{"goma_espuma", "Goma espuma"},
			{"isocianatos", "Isocianatos"},
			{"solventes", "Solventes"},
			{"quesos", "Quesos"},
			{"malta_cebada", "Malta/Cebada"},
			{"talco", "Talco"},
			{"granos", "Granos"},
			{"aves", "Aves"},
			{"animales_corral", "Animales de corral"},
			{"aluminio", "Aluminio"},
			{"limpieza_casas", "Limpieza de casas"},
			{"papel", "Papel"},
			{"cemento", "Cemento"},
			{"jardineria_compost", "Jardineria/compost"},
			{"hongos_champignones", "Hongos o champignones"},
			{"corcho", "Corcho"},
			{"peleteria", "Peleteria"},
		},
		DomesticExposures: []Pair{
			{"aves_mascotas", "Aves o mascotas"},
			{"palomas", "Palomas"},
			{"plumas", "Plumas (almohada o edredon)"},
			{"ac_central", "Aire/ac central o humidificador"},
			{"casa_antigua", "Casa antigua"},
			{"dano_humedad", "Dano por humedad"},
			{"lavaplatos", "Lavaplatos con perdidas"},
			{"jacuzzi", "Jacuzzi o hidromasaje"},
			{"hongos_roperos", "Hongos en roperos"},
			{"vecinos_aves", "Vecinos con aves"},
		},
		IllicitDrugs: []Pair{
			{"marihuana", "Fumo marihuana"},
			{"cocaina_paco", "Cocaina/Paco"},
			{"endovenosa", "Drogas endovenosas"},
		},
		PneumotoxicDrugs: []Pair{
			{"azatioprina", "Azatioprina"},
			{"mtx", "Metotrexato"},
			{"sales_oro", "Sales de oro"},
			{"ciclofosfamida", "Ciclofosfamida"},
			{"bleomicina", "Bleomicina"},
			{"amiodarona", "Amiodarona"},
			{"hidralazina", "Hidralazina"},
			{"nitrofurantoina", "Nitrofurantoina"},
		},
	}
}

// PortalLink returns the study-results portal URL for a center, matched
// case-insensitively. Empty string when the center has no portal.
func PortalLink(center string) string {
	return centerPortalLinks[strings.ToLower(strings.TrimSpace(center))]
}

var centerPortalLinks = map[string]string{
	"roentgen":              "https://estudios.roentgen.com.ar:4432/request-report/",
	"sanatorio cruz azul":   "https://cruzazul.informemedico.com.ar/mis_estudios/",
	"sanatorio de la canada": "https://pacientes.sdlc.com.ar/",
	"clinica san martin":    "https://clinicasanmartin.com.ar/estudios/",
}
