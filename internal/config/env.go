package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Variables d'environnement reconnues.
const (
	EnvFile      = "DUBSYNC_ENV" // chemin d'un fichier .env à charger
	EnvFFmpeg    = "DUBSYNC_FFMPEG"
	EnvFFprobe   = "DUBSYNC_FFPROBE"
	EnvOutputDir = "DUBSYNC_OUTPUT_DIR"
	EnvWorkers   = "DUBSYNC_WORKERS"
)

// LoadDotEnv charge le fichier désigné par DUBSYNC_ENV, sinon ".env" s'il existe.
// Les variables déjà définies dans l'environnement ne sont pas écrasées.
func LoadDotEnv() error {
	if p := strings.TrimSpace(os.Getenv(EnvFile)); p != "" {
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("chargement de %s impossible : %w", p, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("chargement de .env impossible : %w", err)
		}
	}
	return nil
}

// ApplyEnv applique les surcharges DUBSYNC_* par-dessus la config du fichier.
func (c *Config) ApplyEnv() error {
	if err := LoadDotEnv(); err != nil {
		return err
	}

	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		c.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s invalide (%q) : %w", EnvWorkers, v, err)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvFFmpeg)); v != "" {
		c.FFmpeg.Path = v
	}

	c.normalizeConfig()

	// DUBSYNC_FFPROBE désigne directement l'exécutable ffprobe
	if v := strings.TrimSpace(os.Getenv(EnvFFprobe)); v != "" {
		c.FFmpeg.ResolvedProbePath = v
	}
	return nil
}
