package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickprogramme/dubsync/internal/fsutil"
)

// NewFFmpeg construit une instance. path et probePath doivent être résolus par la config.
func NewFFmpeg(name, path, probePath string, cfg FFmpegConfig) *FFmpeg {
	return &FFmpeg{
		Name:      name,
		Path:      path,
		ProbePath: probePath,
		Config:    cfg,
		Runner:    ExecRunner{},
	}
}

// CheckBinary vérifie que ffmpeg et ffprobe existent. Un nom sans séparateur
// est cherché dans le PATH.
func (f *FFmpeg) CheckBinary() error {
	if f == nil {
		return fmt.Errorf("ffmpeg non initialisé")
	}
	for _, exe := range []string{f.exe(), f.probeExe()} {
		if err := checkExecutable(exe); err != nil {
			return err
		}
	}
	return nil
}

func checkExecutable(exe string) error {
	if exe == "" {
		return fmt.Errorf("nom d'exécutable vide")
	}
	if !strings.ContainsRune(exe, filepath.Separator) && !strings.ContainsRune(exe, '/') {
		if _, err := exec.LookPath(exe); err != nil {
			return fmt.Errorf("%s introuvable dans le PATH : %w", exe, err)
		}
		return nil
	}
	info, err := os.Stat(exe)
	if err != nil {
		return fmt.Errorf("%s introuvable à l'emplacement spécifié : %w", exe, err)
	}
	if info.IsDir() {
		return fmt.Errorf("le chemin spécifié (%s) est un répertoire, pas un fichier exécutable", exe)
	}
	return nil
}

// GetVersion exécute `ffmpeg -version` et retourne la première ligne.
func (f *FFmpeg) GetVersion(ctx context.Context) (string, error) {
	out, err := f.Runner.CombinedOutput(ctx, f.exe(), "-version")
	if err != nil {
		return "", fmt.Errorf("échec exécution ffmpeg -version : %w, output: %s", err, string(out))
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// render lance ffmpeg vers un fichier temporaire voisin de dst, puis le publie.
// En cas d'échec, dst n'est jamais créé ni modifié.
func (f *FFmpeg) render(ctx context.Context, op, dst string, build func(out string) []string) error {
	start := time.Now()
	tmp, err := fsutil.TempSibling(dst)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	args := f.Config.BuildArgs(build(tmp)...)
	f.logger().Debug("ffmpeg", "op", op, "dst", dst, "args", strings.Join(args, " "))

	out, err := f.Runner.CombinedOutput(ctx, f.exe(), args...)
	if err != nil {
		fsutil.Discard(tmp)
		return fmt.Errorf("%s %s: %w, output: %s", op, filepath.Base(dst), err, strings.TrimSpace(string(out)))
	}
	if err := fsutil.CommitFile(tmp, dst); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	f.logger().Debug("ffmpeg done", "op", op, "dst", dst, "elapsed", time.Since(start))
	return nil
}
