package fsutil

import (
	"regexp"
	"strings"
	"unicode"
)

// longueur max d'un nom de dossier de run
const maxFilenameLen = 200

// invalidFileRunes définit les caractères interdits dans les noms de fichiers
// \x00-\x1F sont les caractères de contrôle
var invalidFileRunes = regexp.MustCompile(`[<>"/\\|?*\x00-\x1F]`)

var multiSpace = regexp.MustCompile(`\s+`)

// SanitizeFilename nettoie un titre de run pour en faire un nom de dossier/fichier valide.
// - ":" devient "-", les autres caractères interdits deviennent des espaces
// - espaces multiples réduits, points terminaux supprimés
// - longueur limitée, "untitled" si le résultat est vide
func SanitizeFilename(name string) string {
	if name == "" {
		return "untitled"
	}

	name = strings.ReplaceAll(name, ":", "-")
	clean := invalidFileRunes.ReplaceAllString(name, " ")
	clean = strings.TrimSpace(clean)
	clean = multiSpace.ReplaceAllString(clean, " ")
	clean = strings.TrimRight(clean, ".")

	if clean == "" {
		return "untitled"
	}

	if len(clean) > maxFilenameLen {
		// coupe sur une frontière de rune
		rs := []rune(clean)
		for len(string(rs)) > maxFilenameLen {
			rs = rs[:len(rs)-1]
		}
		clean = string(rs)
	}

	return CapitalizeFirst(clean)
}

// CapitalizeFirst met en majuscule le premier caractère (rune) de s.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(s)
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}
