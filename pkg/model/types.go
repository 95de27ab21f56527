package model

import (
	"fmt"
	"math"
	"time"
)

// Millis est un offset (ou une durée) en millisecondes dans la timeline source.
type Millis int64

// MillisFromDuration arrondit une time.Duration à la milliseconde la plus proche.
func MillisFromDuration(d time.Duration) Millis {
	return Millis(math.Round(float64(d) / float64(time.Millisecond)))
}

func (m Millis) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

func (m Millis) Seconds() float64 {
	return float64(m) / 1000
}

// Frame convertit l'offset en index de frame : round(ms/1000 * fps).
// Le même arrondi est utilisé pour le début et la fin de chaque clip, donc
// la fin du clip i tombe exactement sur le début du clip i+1.
func (m Millis) Frame(fps float64) int64 {
	if fps <= 0 {
		return 0
	}
	return int64(math.Round(float64(m) / 1000 * fps))
}

// Sample convertit l'offset en index d'échantillon audio (arrondi au plus proche).
func (m Millis) Sample(rate int) int64 {
	if rate <= 0 {
		return 0
	}
	return (int64(m)*int64(rate) + 500) / 1000
}

// TimestampHHMMSS formate Millis en "HH:MM:SS.mmm".
// Exemple : 65432 -> "00:01:05.432".
func (m Millis) TimestampHHMMSS() string {
	total := int64(m)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	h := total / 3_600_000
	mn := (total % 3_600_000) / 60_000
	sec := (total % 60_000) / 1000
	ms := total % 1000
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, h, mn, sec, ms)
}

func (m Millis) String() string {
	return fmt.Sprintf("%dms", int64(m))
}

// constantes pour les formats de fichiers
type Format string

const (
	FormatWAV      Format = "wav"
	FormatMP4      Format = "mp4"
	FormatMKV      Format = "mkv"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
	FormatMARKDOWN Format = "md"
)

// du format en chaine à la constante de type Format, return une erreur si format inconnu
func ParseFormat(s string) (Format, error) {
	switch s {
	case "wav":
		return FormatWAV, nil
	case "mp4":
		return FormatMP4, nil
	case "mkv":
		return FormatMKV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "md":
		return FormatMARKDOWN, nil
	default:
		return "", fmt.Errorf("format demandé inconnu: %s", s)
	}
}

func (f Format) IsMedia() bool {
	return f == FormatWAV || f == FormatMP4 || f == FormatMKV
}

func (f Format) IsDocument() bool {
	return f == FormatYAML || f == FormatJSON || f == FormatMARKDOWN
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) String() string {
	return string(f)
}
