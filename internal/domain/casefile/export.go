package casefile

import (
	"html/template"

	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
)

type docData struct {
	Patient      *patient.Patient
	Presentation *Presentation
}

// docTemplate is plain HTML with Word-friendly styling; saved with a .doc
// extension Word opens it as a document.
var docTemplate = template.Must(template.New("case-doc").Parse(`<html>
<head>
<meta charset="utf-8">
<title>Presentación de caso - {{.Patient.FullName}}</title>
<style>
body { font-family: Calibri, Arial, sans-serif; font-size: 11pt; }
h1 { font-size: 16pt; }
h2 { font-size: 13pt; border-bottom: 1px solid #999; }
pre { font-family: inherit; white-space: pre-wrap; margin: 0 0 12pt 0; }
</style>
</head>
<body>
<h1>Presentación de caso: {{.Patient.FullName}}</h1>
<p>DNI: {{if .Patient.DNI}}{{.Patient.DNI}}{{else}}---{{end}}
{{- if .Patient.HealthInsurance}} | Obra social: {{.Patient.HealthInsurance}}{{end}}</p>

<h2>Presentación del paciente</h2>
<pre>{{if .Presentation.Intro}}{{.Presentation.Intro}}{{end}}</pre>

<h2>Examen físico</h2>
<pre>{{if .Presentation.PhysicalExam}}{{.Presentation.PhysicalExam}}{{end}}</pre>

<h2>Pruebas funcionales respiratorias</h2>
<pre>{{if .Presentation.RespiratoryTests}}{{.Presentation.RespiratoryTests}}{{end}}</pre>

<h2>Laboratorio e inmunología</h2>
<pre>{{if .Presentation.Immunology}}{{.Presentation.Immunology}}{{end}}</pre>

<h2>Exposiciones</h2>
<pre>{{if .Presentation.Exposures}}{{.Presentation.Exposures}}{{end}}</pre>

<h2>Imágenes</h2>
<pre>{{if .Presentation.Imaging}}{{.Presentation.Imaging}}{{end}}</pre>

<h2>Notas del comité</h2>
<pre>{{if .Presentation.Notes}}{{.Presentation.Notes}}{{end}}</pre>
</body>
</html>
`))
