package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickprogramme/dubsync/internal/config"
	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"github.com/patrickprogramme/dubsync/internal/layout"
	"github.com/patrickprogramme/dubsync/internal/merge"
	"github.com/patrickprogramme/dubsync/internal/reconcile"
	"github.com/patrickprogramme/dubsync/internal/report"
	"github.com/patrickprogramme/dubsync/internal/script"
	"github.com/patrickprogramme/dubsync/internal/segment"
	"github.com/patrickprogramme/dubsync/internal/ui"
	"github.com/patrickprogramme/dubsync/pkg/model"
)

// Backend regroupe les opérations média des deux phases (ffmpeg en production).
type Backend interface {
	segment.Media
	merge.Media
}

// Options des sous-commandes
type SegmentOptions struct {
	Script     string
	Video      string
	Audio      string
	Instrument string
}

type MergeOptions struct {
	Script string
	Lang   string
}

type ReconcileOptions struct {
	VideoMs int64
	AudioMs int64
}

type PlanOptions struct {
	Script  string
	TotalMs int64
}

// App orchestre les différentes dépendances (UI, ffmpeg, journal, rendu...)
type App struct {
	cfg      *config.Config
	ui       ui.Interface
	renderer *report.Renderer
	logger   *slog.Logger
	backend  Backend // nil : ffmpeg initialisé à la première phase qui en a besoin
}

// New construit l'application. Pour les tests, WithBackend injecte un faux backend média.
func New(cfg *config.Config, uiClient ui.Interface, renderer *report.Renderer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &App{
		cfg:      cfg,
		ui:       uiClient,
		renderer: renderer,
		logger:   logger,
	}
}

func (a *App) WithBackend(b Backend) *App {
	a.backend = b
	return a
}

// RunSegment découpe la vidéo source du script en clips indexés.
func (a *App) RunSegment(ctx context.Context, opts SegmentOptions) error {
	sc, err := script.Load(opts.Script)
	if err != nil {
		return err
	}

	video, err := a.sourceVideo(ctx, opts, sc)
	if err != nil {
		return err
	}
	if sc.SourcePath == "" {
		sc.SourcePath = video
	}

	backend, err := a.media(ctx)
	if err != nil {
		return err
	}

	l := layout.ForScript(a.cfg.OutputDir, sc)
	if empty, err := fsutil.IsDirEmpty(l.VideoDir()); err == nil && !empty {
		a.ui.PrintWarn(ctx, fmt.Sprintf("des clips existent déjà dans %s ; ils seront remplacés", l.Root))
	}
	rec, finish, runID := a.startRun(ctx, sc.Title, segment.Phase, "")

	seg := &segment.Segmenter{
		Media:    backend,
		Workers:  a.cfg.Workers,
		Logger:   a.logger,
		Recorder: rec,
	}
	res, runErr := seg.Segment(ctx, sc, l, segment.Sources{
		Video:      video,
		Audio:      opts.Audio,
		Instrument: opts.Instrument,
	})
	finish(runErr)

	for _, w := range res.Warnings {
		a.ui.PrintWarn(ctx, w.Error())
	}

	// un script refusé n'a rien écrit : pas de rapport
	if errors.Is(runErr, model.ErrInvalidSegmentOrder) {
		return runErr
	}

	set := res.Set
	if runErr != nil {
		set = model.ClipSet{Title: sc.Title, SourcePath: video, SourceLanguage: sc.SourceLanguage}
	}
	data := report.NewReportData(segment.Phase, set, sc, "")
	data.RunID = runID
	for _, w := range res.Warnings {
		data.AddWarnings(w.Error())
	}
	data.AddError(runErr)
	if path, err := a.saveReport(l, data); err != nil {
		a.ui.PrintWarn(ctx, fmt.Sprintf("rapport non écrit : %v", err))
	} else if path != "" {
		a.ui.PrintInfo(ctx, fmt.Sprintf("Rapport : %s", path))
	}

	if runErr != nil {
		return fmt.Errorf("segment: %w", runErr)
	}

	// copie du script à côté des clips pour les étapes suivantes (traduction, TTS)
	if err := script.Save(l.ScriptFile(), sc); err != nil {
		return err
	}
	a.ui.PrintInfo(ctx, fmt.Sprintf("%d clips (%d transcrits) écrits dans %s", len(set.Clips), set.ContentCount(), l.Root))
	return nil
}

// RunMerge assemble la vidéo doublée dans la langue demandée.
func (a *App) RunMerge(ctx context.Context, opts MergeOptions) error {
	sc, err := script.Load(opts.Script)
	if err != nil {
		return err
	}
	lang := model.NormalizeLanguage(opts.Lang)
	if lang == "" {
		return fmt.Errorf("merge: langue manquante")
	}
	if lang != sc.SourceLanguage && !sc.HasLanguage(lang) {
		return fmt.Errorf("%w: %s absent du script %s", model.ErrInvalidTranslation, lang, sc.Title)
	}

	l := layout.ForScript(a.cfg.OutputDir, sc)
	set, err := l.ReadManifest()
	if err != nil {
		return fmt.Errorf("merge: %w (lancer d'abord la découpe)", err)
	}

	// vérification avant de lancer ffmpeg
	if err := merge.Preflight(l, set, lang); err != nil {
		return err
	}

	backend, err := a.media(ctx)
	if err != nil {
		return err
	}

	rec, finish, runID := a.startRun(ctx, sc.Title, merge.Phase, lang.String())
	m := &merge.Merger{
		Media:     backend,
		Workers:   a.cfg.Workers,
		Tolerance: time.Duration(a.cfg.ToleranceMs) * time.Millisecond,
		Logger:    a.logger,
		Recorder:  rec,
	}
	res, runErr := m.Merge(ctx, l, set, lang)
	finish(runErr)

	data := report.NewReportData(merge.Phase, set, sc, lang)
	data.RunID = runID
	data.AddError(runErr)
	if runErr == nil {
		for _, p := range res.Plans {
			data.SetPlan(p.Clip.Index, p.Plan.String())
		}
		data.Output = l.Rel(res.Output)
		data.OutputDuration = res.Duration.Round(time.Millisecond).String()
	}
	if path, err := a.saveReport(l, data); err != nil {
		a.ui.PrintWarn(ctx, fmt.Sprintf("rapport non écrit : %v", err))
	} else if path != "" {
		a.ui.PrintInfo(ctx, fmt.Sprintf("Rapport : %s", path))
	}

	if runErr != nil {
		return fmt.Errorf("merge [%s]: %w", lang, runErr)
	}

	a.ui.PrintInfo(ctx, fmt.Sprintf("Vidéo doublée écrite :\n%s", res.Output))
	if a.cfg.CopyOutputPath {
		a.copyPath(ctx, res.Output)
	}
	return nil
}

// RunReconcile affiche la correction calculée pour deux durées.
func (a *App) RunReconcile(ctx context.Context, opts ReconcileOptions) error {
	video := time.Duration(opts.VideoMs) * time.Millisecond
	audio := time.Duration(opts.AudioMs) * time.Millisecond
	if err := reconcile.Check(video, audio); err != nil {
		return err
	}
	tol := time.Duration(a.cfg.ToleranceMs) * time.Millisecond
	p := reconcile.Within(video, audio, tol)
	a.ui.PrintInfo(ctx, p.String())
	if p.StretchesVideo() {
		a.ui.PrintInfo(ctx, fmt.Sprintf("vitesse vidéo : %.4f", p.VideoSpeed))
	}
	a.ui.PrintInfo(ctx, fmt.Sprintf("durée alignée : %s", p.Duration()))
	return nil
}

// RunPlan affiche la séquence de clips sans rien écrire.
func (a *App) RunPlan(ctx context.Context, opts PlanOptions) error {
	sc, err := script.Load(opts.Script)
	if err != nil {
		return err
	}
	total := model.Millis(opts.TotalMs)
	if total <= 0 {
		if n := sc.Len(); n > 0 {
			last, _ := sc.Segment(n - 1)
			total = last.End
		}
	}

	plan, err := segment.PlanClips(sc, total)
	if err != nil {
		return err
	}

	set := model.ClipSet{
		Title:          sc.Title,
		SourcePath:     sc.SourcePath,
		SourceLanguage: sc.SourceLanguage,
		Total:          plan.Total,
		Clips:          plan.Clips,
	}
	data := report.NewReportData("plan", set, sc, "")
	for _, w := range plan.Warnings {
		data.AddWarnings(w.Error())
	}
	if a.renderer == nil {
		for _, c := range plan.Clips {
			a.ui.PrintInfo(ctx, c.String())
		}
		return nil
	}
	content, err := a.renderer.Render(reportTemplate, data)
	if err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return a.ui.ShowMarkdown(ctx, content)
}

// sourceVideo : priorité flag > source_path du script > clipboard/prompt.
func (a *App) sourceVideo(ctx context.Context, opts SegmentOptions, sc *model.Script) (string, error) {
	if opts.Video != "" {
		return opts.Video, nil
	}
	if sc.SourcePath != "" {
		p := sc.SourcePath
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(opts.Script), p)
		}
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		a.ui.PrintWarn(ctx, fmt.Sprintf("source_path introuvable : %s", p))
	}
	p, err := a.ui.GetSourcePath(ctx)
	if err != nil {
		return "", fmt.Errorf("get source: %w", err)
	}
	return p, nil
}
