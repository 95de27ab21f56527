// Package layout fixe l'arborescence des artefacts d'un run. Les noms de clips
// utilisent un index à largeur fixe : l'ordre lexical et l'ordre numérique
// coïncident, c'est le seul moyen de coordination entre les phases.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"github.com/patrickprogramme/dubsync/pkg/model"
)

// IndexWidth : nombre de chiffres de l'index dans les noms de clips.
const IndexWidth = 6

const (
	clipPrefix     = "segment_"
	sourceDirName  = "source"
	instrumentName = "instrument"

	dirPerm = 0o755
)

// Layout décrit la racine d'artefacts d'un run.
type Layout struct {
	Root  string // <output_dir>/<titre nettoyé>
	Title string // titre brut du run
}

// New construit le layout d'un run à partir du dossier de sortie et du titre.
func New(outputDir, title string) Layout {
	return Layout{
		Root:  filepath.Join(outputDir, fsutil.SanitizeFilename(title)),
		Title: title,
	}
}

// ForScript est un raccourci pour New(outputDir, s.Title).
func ForScript(outputDir string, s *model.Script) Layout {
	return New(outputDir, s.Title)
}

// ClipName retourne "segment_000042.wav" pour (42, FormatWAV).
func ClipName(index int, f model.Format) string {
	return fmt.Sprintf("%s%0*d%s", clipPrefix, IndexWidth, index, f.Extension())
}

// ParseClipIndex extrait l'index d'un nom produit par ClipName.
func ParseClipIndex(name string) (int, bool) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, clipPrefix) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(base, clipPrefix), filepath.Ext(base))
	if len(digits) != IndexWidth {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (l Layout) VideoDir() string { return filepath.Join(l.Root, "video", sourceDirName) }

func (l Layout) SourceAudioDir() string { return filepath.Join(l.Root, "audio", sourceDirName) }

func (l Layout) InstrumentDir() string { return filepath.Join(l.Root, "audio", instrumentName) }

func (l Layout) LangAudioDir(lang model.Language) string {
	return filepath.Join(l.Root, "audio", string(lang))
}

func (l Layout) CompositeDir(lang model.Language) string {
	return filepath.Join(l.Root, "composite", string(lang))
}

func (l Layout) VideoClip(i int) string {
	return filepath.Join(l.VideoDir(), ClipName(i, model.FormatMP4))
}

func (l Layout) SourceAudio(i int) string {
	return filepath.Join(l.SourceAudioDir(), ClipName(i, model.FormatWAV))
}

func (l Layout) InstrumentAudio(i int) string {
	return filepath.Join(l.InstrumentDir(), ClipName(i, model.FormatWAV))
}

// LangAudio est le chemin attendu de la sortie TTS pour (clip, langue).
func (l Layout) LangAudio(i int, lang model.Language) string {
	return filepath.Join(l.LangAudioDir(lang), ClipName(i, model.FormatWAV))
}

func (l Layout) Composite(i int, lang model.Language) string {
	return filepath.Join(l.CompositeDir(lang), ClipName(i, model.FormatMKV))
}

// Output est le fichier final du merge : "[EN]_<titre>.mp4".
func (l Layout) Output(lang model.Language) string {
	name := fmt.Sprintf("[%s]_%s%s", lang, fsutil.SanitizeFilename(l.Title), model.FormatMP4.Extension())
	return filepath.Join(l.Root, name)
}

func (l Layout) Manifest() string   { return filepath.Join(l.Root, "clips.yaml") }
func (l Layout) ScriptFile() string { return filepath.Join(l.Root, "script.yaml") }
func (l Layout) ReportDir() string  { return l.Root }

// Rel rend path relatif à la racine (pour le manifeste). Retourne path tel quel sinon.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

// Abs résout un chemin relatif du manifeste.
func (l Layout) Abs(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// EnsureDirs crée les dossiers donnés (et la racine).
func (l Layout) EnsureDirs(dirs ...string) error {
	all := append([]string{l.Root}, dirs...)
	for _, d := range all {
		if err := os.MkdirAll(d, dirPerm); err != nil {
			return fmt.Errorf("create dir %s: %w", d, err)
		}
	}
	return nil
}
