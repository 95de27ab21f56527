// Package segment découpe la vidéo et l'audio source en clips indexés, guidé
// par les timestamps du transcript, sans perdre les intervalles non transcrits.
package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/patrickprogramme/dubsync/internal/clipwork"
	"github.com/patrickprogramme/dubsync/internal/layout"
	"github.com/patrickprogramme/dubsync/internal/media"
	"github.com/patrickprogramme/dubsync/internal/runlog"
	"github.com/patrickprogramme/dubsync/pkg/model"
)

// Phase est le nom de la phase dans les erreurs et le journal.
const Phase = "segment"

// Media regroupe les opérations du backend média utilisées par le découpage.
type Media interface {
	Probe(ctx context.Context, path string) (media.Info, error)
	CutVideo(ctx context.Context, src, dst string, startFrame, endFrame int64) error
	CutAudio(ctx context.Context, src, dst string, startSample, endSample int64) error
}

// Sources désigne les fichiers à découper.
type Sources struct {
	Video      string
	Audio      string // vide : la piste audio de Video
	Instrument string // piste de fond optionnelle
}

// Result est le produit d'un découpage réussi.
type Result struct {
	Set      model.ClipSet
	Warnings []Warning
}

// Segmenter matérialise un Plan sur disque.
type Segmenter struct {
	Media    Media
	Workers  int     // clips découpés en parallèle ; <= 0 : pas de limite
	FPS      float64 // 0 : framerate lu par ffprobe
	Logger   *slog.Logger
	Recorder runlog.Recorder
}

func (s *Segmenter) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Segmenter) recorder() runlog.Recorder {
	if s.Recorder == nil {
		return runlog.Nop{}
	}
	return s.Recorder
}

// Segment découpe src selon sc et écrit les clips et le manifeste sous l.
// Un script invalide est refusé avant toute écriture.
func (s *Segmenter) Segment(ctx context.Context, sc *model.Script, l layout.Layout, src Sources) (Result, error) {
	if err := sc.Validate(); err != nil {
		return Result{}, err
	}
	if src.Video == "" {
		return Result{}, fmt.Errorf("segment: aucune vidéo source")
	}
	audioSrc := src.Audio
	if audioSrc == "" {
		audioSrc = src.Video
	}

	vinfo, err := s.Media.Probe(ctx, src.Video)
	if err != nil {
		return Result{}, fmt.Errorf("probe video: %w", err)
	}
	fps := s.FPS
	if fps <= 0 {
		fps = vinfo.FPS
	}
	if fps <= 0 {
		return Result{}, fmt.Errorf("segment: framerate inconnu pour %s", src.Video)
	}

	rate, err := s.sampleRate(ctx, audioSrc, src.Video, vinfo)
	if err != nil {
		return Result{}, err
	}
	instRate := 0
	if src.Instrument != "" {
		if instRate, err = s.sampleRate(ctx, src.Instrument, "", media.Info{}); err != nil {
			return Result{}, err
		}
	}

	total := model.MillisFromDuration(vinfo.Duration)
	plan, err := PlanClips(sc, total)
	if err != nil {
		return Result{}, err
	}
	aligned, err := AlignFrames(plan, fps)
	if err != nil {
		return Result{Warnings: plan.Warnings}, err
	}
	if len(aligned.Clips) != len(plan.Clips) {
		s.logger().Debug("sub-frame gaps merged", "planned", len(plan.Clips), "clips", len(aligned.Clips), "fps", fps)
	}
	plan = aligned
	for _, w := range plan.Warnings {
		s.logger().Warn("segment boundary", "segment", w.Segment, "detail", w.Message)
	}

	dirs := []string{l.VideoDir(), l.SourceAudioDir()}
	if src.Instrument != "" {
		dirs = append(dirs, l.InstrumentDir())
	}
	if err := l.EnsureDirs(dirs...); err != nil {
		return Result{}, err
	}

	clips := make([]model.Clip, len(plan.Clips))
	copy(clips, plan.Clips)
	for i := range clips {
		clips[i].Video = l.Rel(l.VideoClip(i))
		clips[i].Audio = l.Rel(l.SourceAudio(i))
		if src.Instrument != "" {
			clips[i].Instrument = l.Rel(l.InstrumentAudio(i))
		}
	}

	s.logger().Info("segmenting", "title", sc.Title, "clips", len(clips), "total", total, "fps", fps, "rate", rate)

	err = clipwork.Run(ctx, Phase, len(clips), s.Workers, func(ctx context.Context, i int) error {
		c := clips[i]
		cerr := s.cutClip(ctx, l, c, src, audioSrc, fps, rate, instRate)
		ev := runlog.Event{ClipIndex: i, Phase: Phase, Status: runlog.StatusOK, Message: c.String()}
		if cerr != nil {
			ev.Status, ev.Message = runlog.StatusFailed, cerr.Error()
		}
		if rerr := s.recorder().Record(ctx, ev); rerr != nil {
			s.logger().Warn("journal", "clip", i, "err", rerr)
		}
		return cerr
	})
	if err != nil {
		return Result{Warnings: plan.Warnings}, err
	}

	set := model.ClipSet{
		Title:          sc.Title,
		SourcePath:     src.Video,
		SourceLanguage: sc.SourceLanguage,
		Total:          total,
		FPS:            fps,
		SampleRate:     rate,
		Clips:          clips,
	}
	if err := l.WriteManifest(set); err != nil {
		return Result{Warnings: plan.Warnings}, err
	}
	return Result{Set: set, Warnings: plan.Warnings}, nil
}

// sampleRate lit la fréquence de path ; si path est la vidéo déjà sondée, réutilise vinfo.
func (s *Segmenter) sampleRate(ctx context.Context, path, video string, vinfo media.Info) (int, error) {
	info := vinfo
	if path != video {
		var err error
		if info, err = s.Media.Probe(ctx, path); err != nil {
			return 0, fmt.Errorf("probe audio: %w", err)
		}
	}
	if !info.HasAudio || info.SampleRate <= 0 {
		return 0, fmt.Errorf("segment: pas de piste audio exploitable dans %s", path)
	}
	return info.SampleRate, nil
}

func (s *Segmenter) cutClip(ctx context.Context, l layout.Layout, c model.Clip, src Sources, audioSrc string, fps float64, rate, instRate int) error {
	startFrame, endFrame := c.Start.Frame(fps), c.End.Frame(fps)
	if endFrame <= startFrame {
		return fmt.Errorf("%w: clip %d has no whole frame", model.ErrInvalidDuration, c.Index)
	}
	var errs []error
	if err := s.Media.CutVideo(ctx, src.Video, l.VideoClip(c.Index), startFrame, endFrame); err != nil {
		errs = append(errs, err)
	}
	if err := s.Media.CutAudio(ctx, audioSrc, l.SourceAudio(c.Index), c.Start.Sample(rate), c.End.Sample(rate)); err != nil {
		errs = append(errs, err)
	}
	if src.Instrument != "" {
		if err := s.Media.CutAudio(ctx, src.Instrument, l.InstrumentAudio(c.Index), c.Start.Sample(instRate), c.End.Sample(instRate)); err != nil {
			errs = append(errs, fmt.Errorf("instrument: %w", err))
		}
	}
	return errors.Join(errs...)
}
