package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrickprogramme/dubsync/pkg/model"
)

// yamlListInline transforme: {"EN", "JA"} -> ["EN", "JA"]
func yamlListInline(xs []string) string {
	if len(xs) == 0 {
		return "[]"
	}
	quoted := make([]string, 0, len(xs))
	for _, s := range xs {
		quoted = append(quoted, strconv.Quote(s))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// markdownListPure génère des lignes "- item" (avec saut final).
func markdownListPure(xs []string) string {
	if len(xs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range xs {
		trim := strings.TrimSpace(s)
		if trim == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(trim)
		b.WriteString("\n")
	}
	return b.String()
}

func timestampPure(m model.Millis) string {
	return m.TimestampHHMMSS()
}

// escapeCell : une cellule de tableau Markdown tient sur une ligne et ne contient pas de "|".
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.TrimSpace(s)
}

// clipTablePure produit le tableau Markdown des clips.
func clipTablePure(rows []ClipRow) string {
	if len(rows) == 0 {
		return "_aucun clip_\n"
	}
	var b strings.Builder
	b.WriteString("| # | Type | Début | Fin | Durée | Correction | Texte |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, r := range rows {
		plan := r.Plan
		if plan == "" {
			plan = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			r.Index, r.Kind, r.Start.TimestampHHMMSS(), r.End.TimestampHHMMSS(),
			r.Duration(), escapeCell(plan), escapeCell(r.Text))
	}
	return b.String()
}
