package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFFmpegPresence vérifie de manière statique les chemins résolus de ffmpeg et ffprobe.
// Un nom nu (recherche dans le PATH) n'est pas vérifié ici.
// Retourne warnings (non-fataux) et une erreur si c'est critique.
func (c *Config) ValidateFFmpegPresence() (warnings []string, err error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}

	for _, p := range []string{c.FFmpeg.ResolvedPath, c.FFmpeg.ResolvedProbePath} {
		p = strings.TrimSpace(p)
		if p == "" {
			warnings = append(warnings, "aucun chemin résolu pour ffmpeg; recherche dans PATH possible")
			continue
		}
		if !strings.ContainsAny(p, `/\`) {
			// nom nu : résolu plus tard via exec.LookPath
			continue
		}

		parent := filepath.Dir(p)
		if st, serr := os.Stat(parent); serr != nil {
			if os.IsNotExist(serr) {
				warnings = append(warnings, fmt.Sprintf("le dossier parent n'existe pas : %s", parent))
				continue
			}
			return warnings, fmt.Errorf("impossible d'accéder au dossier parent %s : %w", parent, serr)
		} else if !st.IsDir() {
			return warnings, fmt.Errorf("le parent du chemin n'est pas un répertoire : %s", parent)
		}

		info, serr := os.Stat(p)
		if serr != nil {
			if os.IsNotExist(serr) {
				warnings = append(warnings, fmt.Sprintf("exécutable introuvable à l'emplacement configuré : %s", p))
				continue
			}
			return warnings, fmt.Errorf("erreur lors du test du fichier %s : %w", p, serr)
		}
		if info.IsDir() {
			return warnings, fmt.Errorf("le chemin configuré est un répertoire : %s", p)
		}
	}
	return warnings, nil
}

// Validate refuse les valeurs incohérentes après normalisation.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level inconnu : %q", c.LogLevel)
	}
	if c.FFmpeg.VideoCodec == "" || c.FFmpeg.AudioCodec == "" {
		return fmt.Errorf("codecs ffmpeg vides")
	}
	return nil
}
