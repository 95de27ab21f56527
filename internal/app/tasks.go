package app

import (
	"context"
	"fmt"

	"github.com/patrickprogramme/dubsync/internal/assets"
	"github.com/patrickprogramme/dubsync/internal/clipboard"
	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"github.com/patrickprogramme/dubsync/internal/layout"
	"github.com/patrickprogramme/dubsync/internal/media"
	"github.com/patrickprogramme/dubsync/internal/report"
	"github.com/patrickprogramme/dubsync/internal/runlog"
)

const reportTemplate = assets.RunReportTemplate

// media retourne le backend injecté, sinon initialise ffmpeg (CheckBinary + version).
func (a *App) media(ctx context.Context) (Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	ff, version, err := media.InitFFmpeg(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg init: %w", err)
	}
	a.logger.Info("ffmpeg", "path", ff.Path, "version", version)
	a.backend = ff
	return ff, nil
}

// startRun ouvre le journal et crée un run. Le journal est facultatif : en cas
// d'échec on continue avec runlog.Nop. finish doit être appelé une fois.
func (a *App) startRun(ctx context.Context, title, phase, lang string) (rec runlog.Recorder, finish func(error), runID string) {
	noop := func(error) {}
	if !a.cfg.Journal.Enabled {
		return runlog.Nop{}, noop, ""
	}

	j, err := runlog.Open(a.cfg.JournalPath())
	if err != nil {
		a.ui.PrintWarn(ctx, fmt.Sprintf("journal indisponible : %v", err))
		return runlog.Nop{}, noop, ""
	}
	id, err := j.StartRun(ctx, title, phase, lang)
	if err != nil {
		_ = j.Close()
		a.ui.PrintWarn(ctx, fmt.Sprintf("journal indisponible : %v", err))
		return runlog.Nop{}, noop, ""
	}
	a.logger.Debug("run started", "id", id, "phase", phase, "lang", lang)

	finish = func(runErr error) {
		// contexte détaché : le run doit être clos même après Ctrl+C
		if err := j.FinishRun(context.WithoutCancel(ctx), id, runErr); err != nil {
			a.logger.Warn("journal", "err", err)
		}
		if err := j.Close(); err != nil {
			a.logger.Warn("journal close", "err", err)
		}
	}
	return j.Bind(id), finish, id
}

// saveReport rend le rapport et l'écrit dans le dossier du titre.
// Retourne "" sans erreur si save_report est désactivé.
func (a *App) saveReport(l layout.Layout, d report.ReportData) (string, error) {
	if !a.cfg.SaveReport || a.renderer == nil {
		return "", nil
	}
	content, err := a.renderer.Render(reportTemplate, d)
	if err != nil {
		return "", fmt.Errorf("render error: %w", err)
	}
	if err := l.EnsureDirs(l.ReportDir()); err != nil {
		return "", err
	}
	outPath, err := fsutil.SaveMarkdownAtomic(l.ReportDir(), d.Filename, content)
	if err != nil {
		return "", fmt.Errorf("cannot save file to disk: %w", err)
	}
	return outPath, nil
}

func (a *App) copyPath(ctx context.Context, path string) {
	if err := clipboard.WriteAll(path); err != nil {
		a.ui.PrintWarn(ctx, fmt.Sprintf("impossible de copier le chemin : %v", err))
		return
	}
	a.ui.PrintInfo(ctx, "Chemin copié dans le presse-papier.")
}
