// Package report produit le rapport Markdown d'une phase (découpe ou merge)
// à partir d'un template text/template.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickprogramme/dubsync/internal/clipwork"
	"github.com/patrickprogramme/dubsync/pkg/model"
)

// ClipRow est une ligne du tableau des clips.
type ClipRow struct {
	Index int
	Kind  model.ClipKind
	Start model.Millis
	End   model.Millis
	Plan  string // correction appliquée (merge), vide sinon
	Text  string // texte du segment dans la langue du rapport
}

func (r ClipRow) Duration() model.Millis {
	return r.End - r.Start
}

// ReportData contient les données "brutes" pour le rapport.
type ReportData struct {
	Title          string
	Phase          string
	SourcePath     string
	SourceLanguage model.Language
	Language       model.Language // langue du merge, vide pour la découpe
	Languages      []string       // langues disponibles dans le script
	RunID          string
	GeneratedAt    string
	Total          model.Millis
	Output         string
	OutputDuration string
	Clips          []ClipRow
	Warnings       []string
	Errors         []string
	Filename       string // sans extension
}

// NewReportData construit le rapport d'un jeu de clips. sc peut être nil ;
// sinon le texte de chaque clip transcrit est repris dans la langue lang
// (langue source si lang est vide).
func NewReportData(phase string, set model.ClipSet, sc *model.Script, lang model.Language) ReportData {
	d := ReportData{
		Title:          set.Title,
		Phase:          phase,
		SourcePath:     set.SourcePath,
		SourceLanguage: set.SourceLanguage,
		Language:       lang,
		GeneratedAt:    time.Now().Format("2006-01-02 15:04:05"),
		Total:          set.Total,
		Clips:          make([]ClipRow, 0, len(set.Clips)),
	}

	textLang := lang
	if textLang == "" {
		textLang = set.SourceLanguage
	}
	if sc != nil {
		for _, l := range sc.Languages() {
			d.Languages = append(d.Languages, l.String())
		}
	}
	for _, c := range set.Clips {
		row := ClipRow{Index: c.Index, Kind: c.Kind, Start: c.Start, End: c.End}
		if sc != nil && !c.IsFiller() {
			row.Text, _ = sc.Text(c.Segment, textLang)
		}
		d.Clips = append(d.Clips, row)
	}

	d.Filename = "report_" + phase
	if lang != "" {
		d.Filename += "_" + lang.String()
	}
	return d
}

func (d ReportData) ContentCount() int {
	n := 0
	for _, r := range d.Clips {
		if r.Kind == model.ClipContent {
			n++
		}
	}
	return n
}

func (d ReportData) FillerCount() int {
	return len(d.Clips) - d.ContentCount()
}

// SetPlan renseigne la correction appliquée au clip i.
func (d *ReportData) SetPlan(i int, plan string) {
	if i >= 0 && i < len(d.Clips) {
		d.Clips[i].Plan = plan
	}
}

func (d *ReportData) AddWarnings(ws ...string) {
	d.Warnings = append(d.Warnings, ws...)
}

// AddError ajoute err au rapport ; un lot d'échecs donne une ligne par clip.
func (d *ReportData) AddError(err error) {
	if err == nil {
		return
	}
	if be, ok := clipwork.AsBatch(err); ok {
		for _, f := range be.Failures {
			d.Errors = append(d.Errors, f.Error())
		}
		return
	}
	var w interface{ Unwrap() []error }
	if errors.As(err, &w) {
		for _, e := range w.Unwrap() {
			d.Errors = append(d.Errors, e.Error())
		}
		return
	}
	d.Errors = append(d.Errors, fmt.Sprint(err))
}
