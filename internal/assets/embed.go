package assets

import "embed"

//go:embed dubsync.example.yaml
//go:embed templates/*tmpl
var Embedded embed.FS

// Nom de l'asset de config par défaut (chemin DANS Embedded)
const DefaultConfigAsset = "dubsync.example.yaml"

// RunReportTemplate : nom (basename) du template du rapport de run.
const RunReportTemplate = "run_report.md.tmpl"

// DefaultTemplatePaths : liste ordonnée des templates "par défaut" embarqués.
// Ce sont des chemins relatifs DANS Embedded (ex: "templates/run_report.md.tmpl").
var DefaultTemplatePaths = []string{
	"templates/" + RunReportTemplate,
}

// TemplateByName donne un accès par clé (map).
var TemplateByName = map[string]string{
	"run_report": "templates/" + RunReportTemplate,
}
