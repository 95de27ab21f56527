package clipboard

import (
	"errors"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// ReadAll lit le contenu texte du presse-papier.
func ReadAll() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}
	return text, nil
}

// WriteAll écrit une chaîne de caractères dans le presse-papier.
// Retourne une erreur si l'opération échoue.
func WriteAll(text string) error {
	if text == "" {
		return errors.New("le texte à copier ne peut pas être vide")
	}
	return clipboard.WriteAll(text)
}

// CleanPath normalise un chemin collé : BOM, espaces, guillemets
// (copie "en tant que chemin" sous Windows) et préfixe file://.
func CleanPath(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, `"'`)
	s = strings.TrimPrefix(s, "file://")
	return s
}

// ExistingFile indique si s désigne un fichier régulier existant, et
// retourne le chemin nettoyé.
func ExistingFile(s string) (string, bool) {
	p := CleanPath(s)
	if p == "" {
		return "", false
	}
	st, err := os.Stat(p)
	if err != nil || !st.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

// ReadFilePath retourne le chemin contenu dans le presse-papier s'il désigne
// un fichier existant.
func ReadFilePath() (string, bool) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", false
	}
	return ExistingFile(text)
}
