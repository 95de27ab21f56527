// Package reconcile calcule, pour un clip, comment aligner la durée de la
// vidéo source sur celle de la voix synthétisée. La voix n'est jamais
// accélérée ni coupée : si elle est plus longue, la vidéo est ralentie ;
// si elle est plus courte, elle est complétée par du silence.
package reconcile

import (
	"fmt"
	"time"

	"github.com/patrickprogramme/dubsync/pkg/model"
)

// Tolerance : écart en dessous duquel aucune correction n'est appliquée.
const Tolerance = time.Millisecond

// Plan décrit la correction à appliquer à un clip.
type Plan struct {
	Video time.Duration // durée mesurée de la vidéo
	Audio time.Duration // durée mesurée de la voix

	VideoSpeed float64       // 1 : inchangée ; < 1 : ralentie jusqu'à la durée de la voix
	AudioPad   time.Duration // silence ajouté en fin de voix
}

// Check refuse les durées nulles ou négatives.
func Check(video, audio time.Duration) error {
	if video <= 0 {
		return fmt.Errorf("%w: video duration %s", model.ErrInvalidDuration, video)
	}
	if audio <= 0 {
		return fmt.Errorf("%w: audio duration %s", model.ErrInvalidDuration, audio)
	}
	return nil
}

// Reconcile est une fonction pure ; appeler Check avant pour des mesures non fiables.
func Reconcile(video, audio time.Duration) Plan {
	return Within(video, audio, Tolerance)
}

// Within est Reconcile avec une tolérance explicite (tol <= 0 : Tolerance).
func Within(video, audio, tol time.Duration) Plan {
	if tol <= 0 {
		tol = Tolerance
	}
	p := Plan{Video: video, Audio: audio, VideoSpeed: 1}
	diff := audio - video
	switch {
	case diff > -tol && diff < tol:
		// rien à faire
	case diff > 0:
		p.VideoSpeed = float64(video) / float64(audio)
	default:
		p.AudioPad = -diff
	}
	return p
}

func (p Plan) IsNoop() bool {
	return !p.StretchesVideo() && !p.PadsAudio()
}

func (p Plan) StretchesVideo() bool {
	return p.VideoSpeed != 1
}

func (p Plan) PadsAudio() bool {
	return p.AudioPad > 0
}

// Duration est la durée commune des deux pistes après correction.
func (p Plan) Duration() time.Duration {
	switch {
	case p.StretchesVideo():
		return p.Audio
	case p.PadsAudio():
		return p.Audio + p.AudioPad
	default:
		return p.Video
	}
}

func (p Plan) String() string {
	switch {
	case p.StretchesVideo():
		return fmt.Sprintf("stretch video x%.4f (%s -> %s)", p.VideoSpeed, p.Video, p.Audio)
	case p.PadsAudio():
		return fmt.Sprintf("pad audio +%s (%s -> %s)", p.AudioPad, p.Audio, p.Video)
	default:
		return "no-op"
	}
}
