package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alexflint/go-arg"

	"github.com/patrickprogramme/dubsync/internal/app"
	"github.com/patrickprogramme/dubsync/internal/assets"
	"github.com/patrickprogramme/dubsync/internal/bootstrap"
	"github.com/patrickprogramme/dubsync/internal/config"
	"github.com/patrickprogramme/dubsync/internal/report"
	"github.com/patrickprogramme/dubsync/internal/ui"
)

type segmentCmd struct {
	Script     string `arg:"-s,--script,required" help:"transcript (yaml ou json)"`
	Video      string `arg:"-v,--video" help:"vidéo source (défaut : source_path du script)"`
	Audio      string `arg:"-a,--audio" help:"piste audio à découper à la place de celle de la vidéo"`
	Instrument string `arg:"-i,--instrument" help:"piste de fond (musique) à découper avec les clips"`
}

type mergeCmd struct {
	Script string `arg:"-s,--script,required" help:"transcript (yaml ou json)"`
	Lang   string `arg:"-l,--lang,required" help:"langue cible (EN, japanese...)"`
}

type reconcileCmd struct {
	VideoMs int64 `arg:"--video-ms,required" help:"durée de la vidéo en ms"`
	AudioMs int64 `arg:"--audio-ms,required" help:"durée de la voix en ms"`
}

type planCmd struct {
	Script  string `arg:"-s,--script,required" help:"transcript (yaml ou json)"`
	TotalMs int64  `arg:"--total-ms" help:"durée totale de la vidéo en ms (défaut : fin du dernier segment)"`
}

type initCmd struct {
	Force bool `arg:"-f,--force" help:"écrase les templates modifiés (une sauvegarde est faite)"`
}

type args struct {
	Config    string        `arg:"-c,--config" help:"fichier de configuration" default:"dubsync.yaml"`
	Segment   *segmentCmd   `arg:"subcommand:segment" help:"découpe la vidéo source en clips"`
	Merge     *mergeCmd     `arg:"subcommand:merge" help:"assemble la vidéo doublée"`
	Reconcile *reconcileCmd `arg:"subcommand:reconcile" help:"calcule la correction d'un clip"`
	Plan      *planCmd      `arg:"subcommand:plan" help:"affiche la séquence de clips sans rien écrire"`
	Init      *initCmd      `arg:"subcommand:init" help:"réexporte les templates par défaut"`
}

func (args) Description() string {
	return "dubsync : resynchronisation vidéo / voix pour le doublage automatique"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("commande manquante : segment, merge, reconcile, plan ou init")
	}

	// déterminer exePath/binDir
	binDir := "."
	exePath, err := os.Executable()
	if err != nil {
		log.Printf("impossible de déterminer le chemin de l'executable: %v", err)
	} else {
		binDir = filepath.Dir(exePath)
	}

	// emplacement config par défaut
	if a.Config == config.DefaultFileName || a.Config == "" {
		a.Config = filepath.Join(binDir, config.DefaultFileName)
	}

	// s'assurer que le fichier config existe, si non on le crée
	if err := bootstrap.EnsureConfigPresent(a.Config, assets.Embedded, assets.DefaultConfigAsset); err != nil {
		log.Printf("erreur: EnsureConfigPresent: %v", err)
	}

	// s'assurer que les templates existent (dans binDir/templates)
	tplDir := filepath.Join(binDir, "templates")
	if a.Init != nil {
		status, err := bootstrap.ExportDefaults(assets.Embedded, "templates", tplDir, a.Init.Force)
		for _, line := range bootstrap.SortedStatus(status) {
			fmt.Println(line)
		}
		if err != nil {
			log.Fatalf("export templates: %v", err)
		}
		return
	}
	if err := bootstrap.EnsureTemplatesPresent(tplDir, assets.Embedded, assets.DefaultTemplatePaths); err != nil {
		log.Printf("warning: ensure templates present: %v", err)
	}

	cfg, err := config.Load(a.Config)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	warnings, err := cfg.ValidateFFmpegPresence()
	if err != nil {
		log.Fatalf("ffmpeg: %v", err)
	}
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	// templates utilisateur, sinon ceux embarqués
	renderer, err := report.DefaultRenderer(tplDir, assets.RunReportTemplate)
	if err != nil {
		logger.Warn("templates utilisateur ignorés", "err", err)
		renderer, err = report.NewRendererFromFS(assets.Embedded, assets.DefaultTemplatePaths)
		if err != nil {
			log.Fatalf("impossible de construire le renderer: %v", err)
		}
	}

	// root context qui s'annule sur SIGINT / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := app.New(cfg, ui.NewTerminal(), renderer, logger)

	switch {
	case a.Segment != nil:
		err = d.RunSegment(ctx, app.SegmentOptions{
			Script:     a.Segment.Script,
			Video:      a.Segment.Video,
			Audio:      a.Segment.Audio,
			Instrument: a.Segment.Instrument,
		})
	case a.Merge != nil:
		err = d.RunMerge(ctx, app.MergeOptions{Script: a.Merge.Script, Lang: a.Merge.Lang})
	case a.Reconcile != nil:
		err = d.RunReconcile(ctx, app.ReconcileOptions{VideoMs: a.Reconcile.VideoMs, AudioMs: a.Reconcile.AudioMs})
	case a.Plan != nil:
		err = d.RunPlan(ctx, app.PlanOptions{Script: a.Plan.Script, TotalMs: a.Plan.TotalMs})
	}
	if err != nil {
		log.Fatalf("%s: %v", p.SubcommandNames()[0], err)
	}
}
