package report

import (
	"fmt"
	"strings"
	"unicode"
)

// buildCalloutBase construit l'en-tête du callout.
// kind -> en majuscule dans [!KIND]
// title optionnel : si non-vide, ajouté sur la même ligne que l'en-tête.
func buildCalloutBase(kind, title string) string {
	k := strings.ToUpper(strings.TrimSpace(kind))
	if k == "" {
		k = "NOTE"
	}
	var cleanKind []rune
	for _, r := range k {
		if unicode.IsLetter(r) || r == '-' || r == '_' {
			cleanKind = append(cleanKind, r)
		}
	}
	header := fmt.Sprintf("> [!%s]", string(cleanKind))
	if t := strings.TrimSpace(title); t != "" {
		header = header + " " + t
	}
	return header + "\n"
}

// prefixLinesWithQuote ajoute "> " au début de chaque ligne (callout style).
func prefixLinesWithQuote(content string) string {
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return "> \n"
	}
	var b strings.Builder
	for _, l := range strings.Split(content, "\n") {
		b.WriteString("> ")
		b.WriteString(strings.TrimRight(l, " \t"))
		b.WriteString("\n")
	}
	return b.String()
}

// warningFunc : usage dans template:
//   - {{ warning .Texte }}
//   - {{ warning "Titre court" .Texte }}
func warningFunc(args ...interface{}) string {
	var title, content string
	if len(args) == 1 {
		content = fmt.Sprint(args[0])
	} else if len(args) >= 2 {
		title = fmt.Sprint(args[0])
		content = fmt.Sprint(args[1])
	}
	return buildCalloutBase("warning", title) + prefixLinesWithQuote(content)
}

// calloutFunc : {{ callout "failure" "Titre" .Texte }}
func calloutFunc(kind, title, content string) string {
	return buildCalloutBase(kind, title) + prefixLinesWithQuote(content)
}
