// Package merge réassemble les clips d'un run en une vidéo doublée continue :
// chaque clip est recalé (vidéo ralentie ou voix complétée), mixé avec la
// piste de fond éventuelle, puis les clips sont concaténés dans l'ordre.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickprogramme/dubsync/internal/clipwork"
	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"github.com/patrickprogramme/dubsync/internal/layout"
	"github.com/patrickprogramme/dubsync/internal/media"
	"github.com/patrickprogramme/dubsync/internal/reconcile"
	"github.com/patrickprogramme/dubsync/internal/runlog"
	"github.com/patrickprogramme/dubsync/pkg/model"
)

const Phase = "merge"

// Media regroupe les opérations du backend média utilisées par le merge.
type Media interface {
	Probe(ctx context.Context, path string) (media.Info, error)
	StretchVideo(ctx context.Context, src, dst string, speed float64) error
	StretchAudio(ctx context.Context, src, dst string, speed float64) error
	PadAudio(ctx context.Context, src, dst string, pad time.Duration) error
	MixAudio(ctx context.Context, speech, background, dst string) error
	Mux(ctx context.Context, video, audio, dst string) error
	Concat(ctx context.Context, inputs []string, dst string) error
}

// ClipPlan associe à un clip la correction appliquée.
type ClipPlan struct {
	Clip model.Clip
	Plan reconcile.Plan
}

// Result est le produit d'un merge réussi.
type Result struct {
	Output   string
	Language model.Language
	Plans    []ClipPlan // dans l'ordre des clips
	Duration time.Duration
}

type Merger struct {
	Media     Media
	Workers   int
	Tolerance time.Duration // écart ignoré par le réconciliateur ; 0 : reconcile.Tolerance
	Logger    *slog.Logger
	Recorder  runlog.Recorder
}

func (m *Merger) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m.Logger
}

func (m *Merger) recorder() runlog.Recorder {
	if m.Recorder == nil {
		return runlog.Nop{}
	}
	return m.Recorder
}

// artifacts : chemins d'entrée d'un clip pour une langue.
type artifacts struct {
	video      string
	speech     string
	instrument string
}

// resolve calcule les entrées d'un clip. Les remplissages et la langue source
// réutilisent l'audio source découpé ; les autres clips attendent la sortie TTS.
func resolve(l layout.Layout, set model.ClipSet, c model.Clip, lang model.Language) artifacts {
	a := artifacts{
		video:      l.Abs(c.Video),
		speech:     l.LangAudio(c.Index, lang),
		instrument: l.Abs(c.Instrument),
	}
	if a.video == "" {
		a.video = l.VideoClip(c.Index)
	}
	if c.IsFiller() || lang == set.SourceLanguage {
		a.speech = l.Abs(c.Audio)
		if a.speech == "" {
			a.speech = l.SourceAudio(c.Index)
		}
	}
	return a
}

// Preflight vérifie que tous les artefacts attendus existent. Chaque absence est
// rapportée (index et langue) dans un clipwork.BatchError qui enveloppe ErrMissingArtifact.
func Preflight(l layout.Layout, set model.ClipSet, lang model.Language) error {
	var failures []clipwork.ClipFailure
	for i, c := range set.Clips {
		a := resolve(l, set, c, lang)
		paths := []string{a.video, a.speech}
		if a.instrument != "" {
			paths = append(paths, a.instrument)
		}
		var missing []error
		for _, p := range paths {
			ok, err := fsutil.FileExists(p)
			if err != nil {
				missing = append(missing, fmt.Errorf("%w: %s [%s]: %v", model.ErrMissingArtifact, p, lang, err))
				continue
			}
			if !ok {
				missing = append(missing, fmt.Errorf("%w: %s [%s]", model.ErrMissingArtifact, p, lang))
			}
		}
		if len(missing) > 0 {
			failures = append(failures, clipwork.ClipFailure{Index: i, Err: errors.Join(missing...)})
		}
	}
	return clipwork.NewBatchError(Phase+" preflight", failures)
}

// Merge produit "[<lang>]_<titre>.mp4" à partir du jeu de clips complet.
// Le fichier final n'apparaît qu'en cas de succès.
func (m *Merger) Merge(ctx context.Context, l layout.Layout, set model.ClipSet, lang model.Language) (Result, error) {
	if len(set.Clips) == 0 {
		return Result{}, fmt.Errorf("merge: aucun clip")
	}
	if lang == "" {
		return Result{}, fmt.Errorf("merge: langue vide")
	}
	for i, c := range set.Clips {
		if c.Index != i {
			return Result{}, fmt.Errorf("%w: clip %d has index %d", model.ErrInvalidSegmentOrder, i, c.Index)
		}
	}

	if err := Preflight(l, set, lang); err != nil {
		return Result{}, err
	}

	if err := l.EnsureDirs(l.CompositeDir(lang)); err != nil {
		return Result{}, err
	}
	work, err := os.MkdirTemp(l.CompositeDir(lang), ".work-")
	if err != nil {
		return Result{}, fmt.Errorf("merge: %w", err)
	}
	defer os.RemoveAll(work)

	m.logger().Info("merging", "title", set.Title, "lang", lang, "clips", len(set.Clips))

	plans := make([]ClipPlan, len(set.Clips))
	err = clipwork.Run(ctx, Phase, len(set.Clips), m.Workers, func(ctx context.Context, i int) error {
		c := set.Clips[i]
		plan, cerr := m.mergeClip(ctx, l, set, c, lang, work)
		plans[i] = ClipPlan{Clip: c, Plan: plan}

		ev := runlog.Event{ClipIndex: i, Phase: Phase, Status: runlog.StatusOK, Message: plan.String()}
		if cerr != nil {
			ev.Status, ev.Message = runlog.StatusFailed, cerr.Error()
		}
		if rerr := m.recorder().Record(ctx, ev); rerr != nil {
			m.logger().Warn("journal", "clip", i, "err", rerr)
		}
		return cerr
	})
	if err != nil {
		return Result{}, err
	}

	// concaténation strictement dans l'ordre des index
	inputs := make([]string, len(set.Clips))
	var total time.Duration
	for i := range set.Clips {
		inputs[i] = l.Composite(i, lang)
		total += plans[i].Plan.Duration()
	}
	out := l.Output(lang)
	if err := m.Media.Concat(ctx, inputs, out); err != nil {
		return Result{}, fmt.Errorf("merge: %w", err)
	}
	m.logger().Info("merged", "output", out, "duration", total)

	return Result{Output: out, Language: lang, Plans: plans, Duration: total}, nil
}

func (m *Merger) mergeClip(ctx context.Context, l layout.Layout, set model.ClipSet, c model.Clip, lang model.Language, work string) (reconcile.Plan, error) {
	a := resolve(l, set, c, lang)

	vinfo, err := m.Media.Probe(ctx, a.video)
	if err != nil {
		return reconcile.Plan{}, fmt.Errorf("probe video: %w", err)
	}
	ainfo, err := m.Media.Probe(ctx, a.speech)
	if err != nil {
		return reconcile.Plan{}, fmt.Errorf("probe speech: %w", err)
	}
	if err := reconcile.Check(vinfo.Duration, ainfo.Duration); err != nil {
		return reconcile.Plan{}, err
	}
	plan := reconcile.Within(vinfo.Duration, ainfo.Duration, m.Tolerance)

	name := func(kind string, f model.Format) string {
		return filepath.Join(work, kind+"_"+layout.ClipName(c.Index, f))
	}

	video := a.video
	if plan.StretchesVideo() {
		video = name("video", model.FormatMP4)
		if err := m.Media.StretchVideo(ctx, a.video, video, plan.VideoSpeed); err != nil {
			return plan, err
		}
	}

	speech := a.speech
	if plan.PadsAudio() {
		speech = name("speech", model.FormatWAV)
		if err := m.Media.PadAudio(ctx, a.speech, speech, plan.AudioPad); err != nil {
			return plan, err
		}
	}

	if a.instrument != "" {
		inst := a.instrument
		if plan.StretchesVideo() {
			inst = name("instrument", model.FormatWAV)
			if err := m.Media.StretchAudio(ctx, a.instrument, inst, plan.VideoSpeed); err != nil {
				return plan, fmt.Errorf("instrument: %w", err)
			}
		}
		mixed := name("mix", model.FormatWAV)
		if err := m.Media.MixAudio(ctx, speech, inst, mixed); err != nil {
			return plan, err
		}
		speech = mixed
	}

	if err := m.Media.Mux(ctx, video, speech, l.Composite(c.Index, lang)); err != nil {
		return plan, err
	}
	return plan, nil
}
