package media

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickprogramme/dubsync/internal/config"
)

const defaultVersionTimeout = 5 * time.Second

// InitFFmpeg initialise le client ffmpeg, vérifie les binaires et récupère la version.
// Retourne le client et la version.
func InitFFmpeg(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*FFmpeg, string, error) {
	fcfg := NewFFmpegConfig(cfg.FFmpeg.ShowOutput, cfg.FFmpeg.VideoCodec, cfg.FFmpeg.AudioCodec, cfg.FFmpeg.AudioSampleRate)
	ff := NewFFmpeg(cfg.FFmpeg.Name, cfg.FFmpeg.ResolvedPath, cfg.FFmpeg.ResolvedProbePath, *fcfg)
	ff.Logger = logger

	// vérifier la présence des binaires
	if err := ff.CheckBinary(); err != nil {
		return nil, "", fmt.Errorf("ffmpeg introuvable : %w", err)
	}

	// récupérer la version (avec timeout)
	vctx, cancel := context.WithTimeout(ctx, defaultVersionTimeout)
	defer cancel()
	version, err := ff.GetVersion(vctx)
	if err != nil {
		return ff, "", fmt.Errorf("échec récupération version ffmpeg : %w", err)
	}
	return ff, version, nil
}
