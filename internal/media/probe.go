package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type probeStream struct {
	CodecType    string `json:"codec_type"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	SampleRate   string `json:"sample_rate"`
	Duration     string `json:"duration"`
}

// probeOutput représente la sortie JSON brute de `ffprobe -show_format -show_streams`.
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe lit la durée, le framerate et la fréquence d'échantillonnage d'un fichier.
func (f *FFmpeg) Probe(ctx context.Context, path string) (Info, error) {
	args := []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams", path}
	out, err := f.Runner.CombinedOutput(ctx, f.probeExe(), args...)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w, output: %s", path, err, strings.TrimSpace(string(out)))
	}
	info, err := ParseProbe(out)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return info, nil
}

// ParseProbe transforme le JSON de ffprobe en Info.
func ParseProbe(raw []byte) (Info, error) {
	var p probeOutput
	if err := json.Unmarshal(raw, &p); err != nil {
		return Info{}, fmt.Errorf("unmarshal ffprobe output: %w", err)
	}

	var info Info
	var streamMax time.Duration
	for _, s := range p.Streams {
		switch s.CodecType {
		case "video":
			if info.HasVideo {
				continue // on ne garde que le premier flux vidéo
			}
			info.HasVideo = true
			fps := parseRate(s.RFrameRate)
			if fps == 0 {
				fps = parseRate(s.AvgFrameRate)
			}
			info.FPS = fps
		case "audio":
			if info.HasAudio {
				continue
			}
			info.HasAudio = true
			info.SampleRate, _ = strconv.Atoi(s.SampleRate)
		}
		if d, ok := parseSeconds(s.Duration); ok && d > streamMax {
			streamMax = d
		}
	}

	// la durée du conteneur prime, sinon le plus long des flux
	if d, ok := parseSeconds(p.Format.Duration); ok {
		info.Duration = d
	} else {
		info.Duration = streamMax
	}
	if info.Duration <= 0 {
		return info, fmt.Errorf("durée introuvable")
	}
	return info, nil
}

// parseRate lit "30000/1001" ou "25".
func parseRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func parseSeconds(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return time.Duration(math.Round(v * float64(time.Second))), true
}
