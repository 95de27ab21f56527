package media

import (
	"context"
	"time"
)

// Interface est l'abstraction utilisée par l'application. Elle facilite le test
// en autorisant une implémentation factice dans les tests.
type Interface interface {
	CheckBinary() error
	GetVersion(ctx context.Context) (string, error)

	Probe(ctx context.Context, path string) (Info, error)
	CutVideo(ctx context.Context, src, dst string, startFrame, endFrame int64) error
	CutAudio(ctx context.Context, src, dst string, startSample, endSample int64) error
	StretchVideo(ctx context.Context, src, dst string, speed float64) error
	StretchAudio(ctx context.Context, src, dst string, speed float64) error
	PadAudio(ctx context.Context, src, dst string, pad time.Duration) error
	MixAudio(ctx context.Context, speech, background, dst string) error
	Mux(ctx context.Context, video, audio, dst string) error
	Concat(ctx context.Context, inputs []string, dst string) error
}

var _ Interface = (*FFmpeg)(nil)
