package media

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Info résume ce que ffprobe dit d'un fichier média.
type Info struct {
	Duration   time.Duration
	FPS        float64 // 0 si pas de flux vidéo
	SampleRate int     // 0 si pas de flux audio
	HasVideo   bool
	HasAudio   bool
}

func (i Info) String() string {
	return fmt.Sprintf("duration=%s fps=%.3f rate=%d video=%v audio=%v", i.Duration, i.FPS, i.SampleRate, i.HasVideo, i.HasAudio)
}

// FFmpeg représente les binaires ffmpeg/ffprobe à exécuter et leur configuration.
type FFmpeg struct {
	Name      string
	Path      string // chemin vers l'exe ffmpeg (ou nom cherché dans PATH)
	ProbePath string // chemin vers l'exe ffprobe
	Config    FFmpegConfig

	Runner Runner
	Logger *slog.Logger
}

func (f *FFmpeg) exe() string {
	if f.Path != "" {
		return f.Path
	}
	return f.Name
}

func (f *FFmpeg) probeExe() string {
	if f.ProbePath != "" {
		return f.ProbePath
	}
	return "ffprobe"
}

func (f *FFmpeg) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f.Logger
}
