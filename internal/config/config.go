package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/patrickprogramme/dubsync/internal/assets"
	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const CurrentConfigVersion = 2

// nom du fichier de config par défaut
const DefaultFileName = "dubsync.yaml"

// struct pour les paramètres de configuration
type Config struct {
	// Chemins
	OutputDir string `yaml:"output_dir"`

	// Traitement
	Workers     int `yaml:"workers"`
	ToleranceMs int `yaml:"tolerance_ms"`

	// Sorties
	SaveReport     bool `yaml:"save_report"`
	CopyOutputPath bool `yaml:"copy_output_path"`

	// Logs
	LogLevel string `yaml:"log_level"`

	// Journal SQLite des runs
	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	// ffmpeg / ffprobe
	FFmpeg struct {
		Name            string `yaml:"name"`
		Path            string `yaml:"path"`
		ProbeName       string `yaml:"ffprobe_name"`
		VideoCodec      string `yaml:"video_codec"`
		AudioCodec      string `yaml:"audio_codec"`
		AudioSampleRate int    `yaml:"audio_sample_rate"`
		ShowOutput      bool   `yaml:"show_output"`

		// chemins effectifs vers les exécutables
		ResolvedPath      string `yaml:"-"`
		ResolvedProbePath string `yaml:"-"`
	} `yaml:"ffmpeg"`

	ConfigVersion int `yaml:"config_version"`

	configFilePath string
}

// Configuration par défaut (fallback si l'asset embarqué est manquant)
func defaultConfig() *Config {
	c := &Config{}

	// Chemins
	c.OutputDir = "./results"

	// Traitement
	c.Workers = 0
	c.ToleranceMs = 1

	// Sorties
	c.SaveReport = true
	c.CopyOutputPath = false

	c.LogLevel = "info"

	c.Journal.Enabled = true
	c.Journal.Path = "journal.db"

	// ffmpeg
	c.FFmpeg.Name = "ffmpeg"
	c.FFmpeg.Path = ""
	c.FFmpeg.ProbeName = "ffprobe"
	c.FFmpeg.VideoCodec = "libx264"
	c.FFmpeg.AudioCodec = "aac"
	c.FFmpeg.AudioSampleRate = 0
	c.FFmpeg.ShowOutput = false

	c.ConfigVersion = CurrentConfigVersion

	return c
}

// Load lit la config; si le fichier n'existe pas, on copie l'exemple embarqué depuis internal/assets.
// Les surcharges d'environnement (ApplyEnv) sont appliquées après la lecture du fichier.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	// si le fichier n'existe pas -> essayer de créer à partir de l'asset embarqué
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createDefaultConfigFromEmbedded(path); err != nil {
			return nil, fmt.Errorf("échec de création du fichier de configuration par défaut : %w", err)
		}
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lecture du fichier de configuration %s impossible : %w", path, err)
	}

	// corriger les chemins Windows avec des backslashes
	data = bytes.ReplaceAll(data, []byte(`\`), []byte(`/`))

	// les champs absents conservent les valeurs par défaut
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("analyse du fichier de configuration %s impossible : %w", path, err)
	}
	cfg.configFilePath = path

	cfg.normalizeConfig()

	// gestion de version : si le fichier est plus ancien -> orchestrer la mise à jour
	if cfg.ConfigVersion < CurrentConfigVersion {
		if err := orchestrateConfigUpgrade(cfg, cfg.ConfigVersion); err != nil {
			return nil, fmt.Errorf("échec de mise à niveau de la configuration : %w", err)
		}
		cfg.normalizeConfig()
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FilePath retourne le chemin du fichier lu par Load.
func (c *Config) FilePath() string {
	return c.configFilePath
}

func createDefaultConfigFromEmbedded(dstPath string) error {
	b, err := assets.Embedded.ReadFile(assets.DefaultConfigAsset)
	if err != nil {
		return fmt.Errorf("lecture du modèle de configuration embarqué impossible : %w", err)
	}
	// écrire atomiquement sur disque (crée le dossier parent, évite les fichiers partiels)
	if err := fsutil.WriteFileAtomic(dstPath, b, 0o644); err != nil {
		return fmt.Errorf("échec d'écriture du fichier de configuration %s : %w", dstPath, err)
	}
	fmt.Printf("info : fichier de configuration par défaut créé : %s\n", dstPath)
	return nil
}

func (c *Config) normalizeConfig() {
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	c.OutputDir = filepath.Clean(c.OutputDir)

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ToleranceMs <= 0 {
		c.ToleranceMs = 1
	}

	c.LogLevel = strings.TrimSpace(strings.ToLower(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	c.Journal.Path = strings.TrimSpace(c.Journal.Path)
	if c.Journal.Path == "" {
		c.Journal.Path = "journal.db"
	}

	c.FFmpeg.VideoCodec = strings.TrimSpace(c.FFmpeg.VideoCodec)
	c.FFmpeg.AudioCodec = strings.TrimSpace(c.FFmpeg.AudioCodec)
	if c.FFmpeg.AudioSampleRate < 0 {
		c.FFmpeg.AudioSampleRate = 0
	}

	// centraliser la résolution des exécutables
	c.ResolveFFmpegPath()
}

// JournalPath retourne le chemin de la base du journal (relatif à OutputDir si non absolu).
func (c *Config) JournalPath() string {
	if filepath.IsAbs(c.Journal.Path) {
		return c.Journal.Path
	}
	return filepath.Join(c.OutputDir, c.Journal.Path)
}

// SlogLevel convertit LogLevel pour log/slog. Une valeur inconnue donne Info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// exeName normalise un nom d'exécutable et ajoute .exe sur Windows.
func exeName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fallback
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return name
}

// ResolveFFmpegPath normalise les noms et résout les chemins de ffmpeg et ffprobe.
// Sans path configuré, les noms nus sont gardés : ils seront cherchés dans le PATH.
// Appeler après avoir modifié cfg.FFmpeg.Name, ProbeName ou Path.
func (c *Config) ResolveFFmpegPath() {
	if c == nil {
		return
	}
	c.FFmpeg.Name = exeName(c.FFmpeg.Name, "ffmpeg")
	c.FFmpeg.ProbeName = exeName(c.FFmpeg.ProbeName, "ffprobe")

	cfgPath := strings.TrimSpace(c.FFmpeg.Path)
	if cfgPath == "" {
		c.FFmpeg.ResolvedPath = c.FFmpeg.Name
		c.FFmpeg.ResolvedProbePath = c.FFmpeg.ProbeName
		return
	}
	cleanPath := filepath.Clean(cfgPath)

	// si le chemin fourni finit déjà par l'exécutable -> ffprobe est cherché à côté
	dir := cleanPath
	if filepath.Base(cleanPath) == c.FFmpeg.Name {
		dir = filepath.Dir(cleanPath)
	}
	c.FFmpeg.ResolvedPath = filepath.Join(dir, c.FFmpeg.Name)
	c.FFmpeg.ResolvedProbePath = filepath.Join(dir, c.FFmpeg.ProbeName)
}
