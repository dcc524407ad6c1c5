package catalog

// MMRCOptions are the valid mMRC dyspnea scale grades.
var MMRCOptions = []int{0, 1, 2, 3, 4}

// StudyTypes lists the imaging and functional study kinds tracked per
// consultation.
var StudyTypes = []string{
	"TC torax",
	"TC torax + abdomen/pelvis",
	"RM torax",
	"PET-CT",
	"Rx torax",
	"Ecografia",
	"Espirometria",
	"Ecocardiograma",
	"Ecodoppler Angiopower",
	"DLCO",
	"Test de la marcha 6m",
	"Biopsia",
	"Otro",
}

// DomesticLabels maps domestic-exposure values to the wording used in the
// hypersensitivity-pneumonitis questionnaire, which differs from the
// generic catalog labels. Order is the questionnaire's display order.
var DomesticLabels = []Pair{
	{"aves_mascotas", "Aves de ornato/mascotas"},
	{"palomas", "Palomas"},
	{"plumas", "Edredon/almohada de plumas"},
	{"ac_central", "Aire acondicionado central / humidificador"},
	{"casa_antigua", "Casa antigua"},
	{"dano_humedad", "Dano por humedad en paredes/techo"},
	{"lavaplatos", "Lavaplatos pierde agua"},
	{"jacuzzi", "Jacuzzi / hidromasaje"},
	{"hongos_roperos", "Hongos en roperos"},
	{"vecinos_aves", "Vecinos con aves"},
}

// LaboralLabels maps occupational-exposure values to the questionnaire
// wording, in display order.
var LaboralLabels = []Pair{
	{"granos", "Henos/Granos/Paja"},
	{"malta_cebada", "Trabajador de malta/cervecero"},
	{"hongos_champignones", "Criadero de hongos/champignones"},
	{"carpinteria_madera", "Maderas/Aserrin/Carpintero"},
	{"jardineria_compost", "Trabajos de jardineria/compost"},
	{"animales_corral", "Criadero de animales (caballos/vacas)"},
	{"quesos", "Quesos/embutidos"},
	{"corcho", "Industria del corcho"},
	{"peleteria", "Peletero/trabajo con pieles"},
	{"goma_espuma", "Espumas de poliuretano"},
	{"pintura", "Pinturas (spray)"},
	{"plasticos", "Plastico/pegamentos/isocianatos"},
}

// ImmunoLabCore is the base immunology panel requested on every workup.
var ImmunoLabCore = []Pair{
	{"fan_hep2_1", "FAN Hep 2 (1ra muestra)"},
	{"fan_hep2_2", "FAN Hep 2 (2da muestra)"},
	{"fr_1", "Factor reumatoide cuantitativo (1ra muestra)"},
	{"fr_2", "Factor reumatoide cuantitativo (2da muestra)"},
	{"anti_ccp", "Anti CCP"},
	{"anti_ro_total", "Anti Ro total"},
	{"anti_ro_52", "Anti Ro 52 kD"},
	{"anti_ro_60", "Anti Ro 60 kD"},
	{"anti_la", "Anti La"},
	{"anti_rnp", "Anti RNP"},
	{"anti_scl70", "Anti Scl 70"},
	{"anti_centromero", "Anti centromero"},
	{"anti_jo1", "Anti Jo 1"},
	{"anca", "ANCA (sin especificar)"},
	{"anca_c", "ANCA C"},
	{"anca_p", "ANCA P"},
	{"pcr", "PCR cualitativa"},
	{"pcr_cuant", "PCR cuantitativa"},
	{"vsg", "VSG"},
	{"cpk", "CPK"},
	{"aldolasa", "Aldolasa"},
}

// ImmunoLabRheum is the extended rheumatology panel.
var ImmunoLabRheum = []Pair{
	{"anti_pl7", "Anti-PL-7"},
	{"anti_pl12", "Anti-PL-12"},
	{"anti_ej", "Anti-EJ"},
	{"anti_oj", "Anti-OJ"},
	{"anti_srp", "Anti-SRP"},
	{"anti_mi2", "Anti-Mi-2"},
	{"anti_mda5", "Anti-MDA5"},
	{"anti_tif1g", "Anti-TIF1γ"},
	{"anti_nxp2", "Anti-NXP2"},
	{"anti_rna_pol_iii", "Anti-RNA polimerasa III"},
	{"anti_pmscl", "Anti-PM/Scl"},
	{"anti_u3_rnp_fibrilarina", "Anti-U3 RNP (fibrilarina)"},
	{"anti_ku", "Anti-Ku"},
	{"anti_th_to", "Anti-Th/To"},
	{"c3", "Complemento C3"},
	{"c4", "Complemento C4"},
	{"c1q", "Complemento C1q"},
	{"ch50", "Complemento CH50"},
	{"antifosfolipidos", "Antifosfolípidos"},
	{"anti_pr3", "Anti PR3"},
	{"anti_mpo", "Anti MPO"},
}

// ImmunoLabAll returns core plus rheumatology panels in display order.
func ImmunoLabAll() []Pair {
	out := make([]Pair, 0, len(ImmunoLabCore)+len(ImmunoLabRheum))
	out = append(out, ImmunoLabCore...)
	out = append(out, ImmunoLabRheum...)
	return out
}

// ImmunoLabel resolves an immunology test code to its label, returning
// the code itself when unknown.
func ImmunoLabel(code string) string {
	return Label(ImmunoLabAll(), code)
}
