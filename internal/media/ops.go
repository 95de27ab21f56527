package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/patrickprogramme/dubsync/internal/fsutil"
)

// pcm 16 bits pour tous les clips audio intermédiaires
const wavCodec = "pcm_s16le"

// paramètres audio communs à tous les composites, pour que le concat les enchaîne
// sans trou ni changement de format
const (
	compositeRate     = 48000
	compositeChannels = "2"
)

// bornes d'un filtre atempo ; au-delà on enchaîne plusieurs étages
const (
	minAtempo = 0.5
	maxAtempo = 2.0
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// CutVideo extrait les frames [startFrame, endFrame) sans la piste audio.
// Le découpage à la frame près impose un ré-encodage.
func (f *FFmpeg) CutVideo(ctx context.Context, src, dst string, startFrame, endFrame int64) error {
	if endFrame <= startFrame {
		return fmt.Errorf("cut video %s: frames [%d, %d) vides", filepath.Base(dst), startFrame, endFrame)
	}
	filter := fmt.Sprintf("trim=start_frame=%d:end_frame=%d,setpts=PTS-STARTPTS", startFrame, endFrame)
	return f.render(ctx, "cut video", dst, func(out string) []string {
		return []string{"-i", src, "-vf", filter, "-an", "-c:v", f.Config.VideoCodec, out}
	})
}

// CutAudio extrait les échantillons [startSample, endSample) en WAV PCM.
func (f *FFmpeg) CutAudio(ctx context.Context, src, dst string, startSample, endSample int64) error {
	if endSample <= startSample {
		return fmt.Errorf("cut audio %s: samples [%d, %d) vides", filepath.Base(dst), startSample, endSample)
	}
	filter := fmt.Sprintf("atrim=start_sample=%d:end_sample=%d,asetpts=PTS-STARTPTS", startSample, endSample)
	return f.render(ctx, "cut audio", dst, func(out string) []string {
		return []string{"-i", src, "-af", filter, "-vn", "-c:a", wavCodec, out}
	})
}

// StretchVideo rejoue la vidéo à la vitesse speed (< 1 : ralentie, donc plus longue).
func (f *FFmpeg) StretchVideo(ctx context.Context, src, dst string, speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("stretch video: vitesse invalide %v", speed)
	}
	filter := fmt.Sprintf("setpts=%s*PTS", formatFloat(1/speed))
	return f.render(ctx, "stretch video", dst, func(out string) []string {
		return []string{"-i", src, "-vf", filter, "-an", "-c:v", f.Config.VideoCodec, out}
	})
}

// StretchAudio change le tempo sans changer la hauteur.
func (f *FFmpeg) StretchAudio(ctx context.Context, src, dst string, speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("stretch audio: vitesse invalide %v", speed)
	}
	filter := strings.Join(AtempoChain(speed), ",")
	return f.render(ctx, "stretch audio", dst, func(out string) []string {
		return []string{"-i", src, "-af", filter, "-vn", "-c:a", wavCodec, out}
	})
}

// AtempoChain décompose speed en étages atempo compris dans [0.5, 2].
func AtempoChain(speed float64) []string {
	var stages []string
	for speed < minAtempo {
		stages = append(stages, "atempo="+formatFloat(minAtempo))
		speed /= minAtempo
	}
	for speed > maxAtempo {
		stages = append(stages, "atempo="+formatFloat(maxAtempo))
		speed /= maxAtempo
	}
	return append(stages, "atempo="+formatFloat(speed))
}

// PadAudio ajoute pad de silence en fin de piste.
func (f *FFmpeg) PadAudio(ctx context.Context, src, dst string, pad time.Duration) error {
	if pad <= 0 {
		return fmt.Errorf("pad audio: durée invalide %s", pad)
	}
	filter := "apad=pad_dur=" + formatSeconds(pad)
	return f.render(ctx, "pad audio", dst, func(out string) []string {
		return []string{"-i", src, "-af", filter, "-vn", "-c:a", wavCodec, out}
	})
}

// MixAudio superpose la piste de fond à la voix ; la durée suit la voix et les
// niveaux ne sont pas renormalisés.
func (f *FFmpeg) MixAudio(ctx context.Context, speech, background, dst string) error {
	filter := "[0:a][1:a]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[a]"
	return f.render(ctx, "mix audio", dst, func(out string) []string {
		return []string{"-i", speech, "-i", background, "-filter_complex", filter, "-map", "[a]", "-c:a", wavCodec, out}
	})
}

// Mux assemble la vidéo d'un clip et sa piste audio dans un conteneur mkv.
// L'audio reste en pcm : un encodage avec priming par clip décalerait la piste
// à chaque jointure du concat.
func (f *FFmpeg) Mux(ctx context.Context, video, audio, dst string) error {
	return f.render(ctx, "mux", dst, func(out string) []string {
		return []string{"-i", video, "-i", audio, "-map", "0:v:0", "-map", "1:a:0",
			"-c:v", "copy", "-c:a", wavCodec, "-ar", strconv.Itoa(f.rate()), "-ac", compositeChannels, out}
	})
}

// rate retourne la fréquence des composites : celle de la config, sinon compositeRate.
func (f *FFmpeg) rate() int {
	if f.Config.SampleRate > 0 {
		return f.Config.SampleRate
	}
	return compositeRate
}

// Concat enchaîne inputs dans l'ordre donné (demuxer concat). La vidéo est copiée,
// l'audio pcm des composites est encodé une seule fois avec AudioCodec.
func (f *FFmpeg) Concat(ctx context.Context, inputs []string, dst string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat: aucune entrée")
	}
	list, err := writeConcatList(filepath.Dir(dst), inputs)
	if err != nil {
		return fmt.Errorf("concat: %w", err)
	}
	defer os.Remove(list)

	return f.render(ctx, "concat", dst, func(out string) []string {
		return []string{"-f", "concat", "-safe", "0", "-i", list,
			"-c:v", "copy", "-c:a", f.Config.AudioCodec, "-ar", strconv.Itoa(f.rate()),
			"-movflags", "+faststart", out}
	})
}

// writeConcatList écrit la liste du demuxer concat : une ligne "file '<chemin absolu>'" par entrée.
func writeConcatList(dir string, inputs []string) (string, error) {
	var sb strings.Builder
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return "", err
		}
		// échappement des apostrophes pour le demuxer
		sb.WriteString("file '")
		sb.WriteString(strings.ReplaceAll(filepath.ToSlash(abs), "'", `'\''`))
		sb.WriteString("'\n")
	}
	tmp, err := fsutil.TempSibling(filepath.Join(dir, "concat.txt"))
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(tmp, []byte(sb.String()), 0o644); err != nil {
		fsutil.Discard(tmp)
		return "", err
	}
	return tmp, nil
}
