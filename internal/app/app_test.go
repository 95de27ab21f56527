package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/patrickprogramme/dubsync/internal/assets"
	"github.com/patrickprogramme/dubsync/internal/config"
	"github.com/patrickprogramme/dubsync/internal/layout"
	"github.com/patrickprogramme/dubsync/internal/media"
	"github.com/patrickprogramme/dubsync/internal/report"
	"github.com/patrickprogramme/dubsync/internal/script"
	"github.com/patrickprogramme/dubsync/pkg/model"
)

// fakeUI enregistre tout ce qui est affiché.
type fakeUI struct {
	mu    sync.Mutex
	info  []string
	warn  []string
	errs  []string
	md    []string
	path  string
	asked bool
}

func (u *fakeUI) GetSourcePath(context.Context) (string, error) {
	u.asked = true
	if u.path == "" {
		return "", errors.New("no path")
	}
	return u.path, nil
}

func (u *fakeUI) PrintInfo(_ context.Context, s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.info = append(u.info, s)
}

func (u *fakeUI) PrintWarn(_ context.Context, s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.warn = append(u.warn, s)
}

func (u *fakeUI) PrintError(_ context.Context, s string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errs = append(u.errs, s)
}

func (u *fakeUI) ShowMarkdown(_ context.Context, md []byte) error {
	u.md = append(u.md, string(md))
	return nil
}

// fakeBackend simule ffmpeg : chaque sortie est un fichier dont la durée est mémorisée.
type fakeBackend struct {
	mu     sync.Mutex
	source string
	durs   map[string]time.Duration
}

const (
	testFPS  = 25
	testRate = 16000
)

func newFakeBackend(source string, total time.Duration) *fakeBackend {
	return &fakeBackend{source: source, durs: map[string]time.Duration{source: total}}
}

func (f *fakeBackend) put(path string, d time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f.mu.Lock()
	f.durs[path] = d
	f.mu.Unlock()
	return os.WriteFile(path, []byte("x"), 0o644)
}

func (f *fakeBackend) dur(path string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.durs[path]
}

func (f *fakeBackend) Probe(_ context.Context, path string) (media.Info, error) {
	return media.Info{Duration: f.dur(path), FPS: testFPS, SampleRate: testRate, HasVideo: true, HasAudio: true}, nil
}

func (f *fakeBackend) CutVideo(_ context.Context, _, dst string, s, e int64) error {
	return f.put(dst, time.Duration(e-s)*time.Second/testFPS)
}

func (f *fakeBackend) CutAudio(_ context.Context, _, dst string, s, e int64) error {
	return f.put(dst, time.Duration(e-s)*time.Second/testRate)
}

func (f *fakeBackend) StretchVideo(_ context.Context, src, dst string, speed float64) error {
	return f.put(dst, time.Duration(float64(f.dur(src))/speed))
}

func (f *fakeBackend) StretchAudio(_ context.Context, src, dst string, speed float64) error {
	return f.put(dst, time.Duration(float64(f.dur(src))/speed))
}

func (f *fakeBackend) PadAudio(_ context.Context, src, dst string, pad time.Duration) error {
	return f.put(dst, f.dur(src)+pad)
}

func (f *fakeBackend) MixAudio(_ context.Context, speech, _, dst string) error {
	return f.put(dst, f.dur(speech))
}

func (f *fakeBackend) Mux(_ context.Context, video, _, dst string) error {
	return f.put(dst, f.dur(video))
}

func (f *fakeBackend) Concat(_ context.Context, inputs []string, dst string) error {
	var total time.Duration
	for _, in := range inputs {
		total += f.dur(in)
	}
	return f.put(dst, total)
}

const testScript = `title: demo
source_path: demo.mp4
source_language: KO
data:
  - {start: 2000, end: 5000, source: "안녕하세요", EN: "Hello"}
`

type fixture struct {
	dir     string
	script  string
	video   string
	cfg     *config.Config
	ui      *fakeUI
	backend *fakeBackend
	app     *App
}

func newFixture(t *testing.T, scriptBody string) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		script: filepath.Join(dir, "demo.yaml"),
		video:  filepath.Join(dir, "demo.mp4"),
		ui:     &fakeUI{},
	}
	if err := os.WriteFile(f.script, []byte(scriptBody), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.video, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	f.cfg = &config.Config{
		OutputDir:   filepath.Join(dir, "results"),
		Workers:     2,
		ToleranceMs: 1,
		SaveReport:  true,
	}
	f.cfg.Journal.Enabled = true
	f.cfg.Journal.Path = filepath.Join(dir, "journal.db")

	renderer, err := report.NewRendererFromFS(assets.Embedded, assets.DefaultTemplatePaths)
	if err != nil {
		t.Fatal(err)
	}
	f.backend = newFakeBackend(f.video, 9*time.Second)
	f.app = New(f.cfg, f.ui, renderer, nil).WithBackend(f.backend)
	return f
}

func (f *fixture) layout(t *testing.T) layout.Layout {
	t.Helper()
	sc, err := script.Load(f.script)
	if err != nil {
		t.Fatal(err)
	}
	return layout.ForScript(f.cfg.OutputDir, sc)
}

func TestSegmentThenMergeSourceLanguage(t *testing.T) {
	f := newFixture(t, testScript)
	ctx := context.Background()

	if err := f.app.RunSegment(ctx, SegmentOptions{Script: f.script}); err != nil {
		t.Fatalf("RunSegment: %v", err)
	}
	if f.ui.asked {
		t.Fatalf("source_path relative to the script must be found without asking")
	}
	l := f.layout(t)
	set, err := l.ReadManifest()
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(set.Clips) != 3 || set.Clips[1].Kind != model.ClipContent {
		t.Fatalf("clips = %v", set.Clips)
	}
	for _, p := range []string{l.ScriptFile(), filepath.Join(l.Root, "report_segment.md"), f.cfg.Journal.Path} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}

	if err := f.app.RunMerge(ctx, MergeOptions{Script: f.script, Lang: "korean"}); err != nil {
		t.Fatalf("RunMerge: %v", err)
	}
	out := l.Output(model.LangKorean)
	if got := f.backend.dur(out); got != 9*time.Second {
		t.Fatalf("output duration = %s; want 9s", got)
	}
	md, err := os.ReadFile(filepath.Join(l.Root, "report_merge_KO.md"))
	if err != nil {
		t.Fatalf("merge report: %v", err)
	}
	if !strings.Contains(string(md), "no-op") {
		t.Fatalf("report lacks per-clip plan:\n%s", md)
	}
}

func TestMergeTranslatedStretchesVideo(t *testing.T) {
	f := newFixture(t, testScript)
	ctx := context.Background()
	if err := f.app.RunSegment(ctx, SegmentOptions{Script: f.script}); err != nil {
		t.Fatalf("RunSegment: %v", err)
	}
	l := f.layout(t)

	// TTS : seul le clip transcrit (index 1) a une voix anglaise, plus longue
	if err := f.backend.put(l.LangAudio(1, model.LangEnglish), 4*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := f.app.RunMerge(ctx, MergeOptions{Script: f.script, Lang: "EN"}); err != nil {
		t.Fatalf("RunMerge: %v", err)
	}
	if got := f.backend.dur(l.Output(model.LangEnglish)); got != 10*time.Second {
		t.Fatalf("output duration = %s; want 10s", got)
	}
}

func TestMergeMissingSpeechProducesNothing(t *testing.T) {
	f := newFixture(t, testScript)
	ctx := context.Background()
	if err := f.app.RunSegment(ctx, SegmentOptions{Script: f.script}); err != nil {
		t.Fatalf("RunSegment: %v", err)
	}
	l := f.layout(t)

	err := f.app.RunMerge(ctx, MergeOptions{Script: f.script, Lang: "EN"})
	if !errors.Is(err, model.ErrMissingArtifact) {
		t.Fatalf("err = %v; want ErrMissingArtifact", err)
	}
	if _, err := os.Stat(l.Output(model.LangEnglish)); !os.IsNotExist(err) {
		t.Fatalf("output exists after failed preflight")
	}
}

func TestMergeUnknownLanguage(t *testing.T) {
	f := newFixture(t, testScript)
	err := f.app.RunMerge(context.Background(), MergeOptions{Script: f.script, Lang: "JA"})
	if !errors.Is(err, model.ErrInvalidTranslation) {
		t.Fatalf("err = %v; want ErrInvalidTranslation", err)
	}
}

func TestSegmentRejectsOverlapBeforeAnyOutput(t *testing.T) {
	bad := `title: demo
source_language: KO
data:
  - {start: 0, end: 3000, source: a}
  - {start: 2000, end: 4000, source: b}
`
	f := newFixture(t, bad)
	err := f.app.RunSegment(context.Background(), SegmentOptions{Script: f.script, Video: f.video})
	if !errors.Is(err, model.ErrInvalidSegmentOrder) {
		t.Fatalf("err = %v; want ErrInvalidSegmentOrder", err)
	}
	if _, err := os.Stat(f.cfg.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("output dir created for an invalid script")
	}
}

func TestSegmentAsksForSourceWhenMissing(t *testing.T) {
	body := strings.Replace(testScript, "source_path: demo.mp4\n", "", 1)
	f := newFixture(t, body)
	f.ui.path = f.video
	if err := f.app.RunSegment(context.Background(), SegmentOptions{Script: f.script}); err != nil {
		t.Fatalf("RunSegment: %v", err)
	}
	if !f.ui.asked {
		t.Fatalf("source path not requested")
	}
	saved, err := script.Load(f.layout(t).ScriptFile())
	if err != nil {
		t.Fatal(err)
	}
	if saved.SourcePath != f.video {
		t.Fatalf("saved source_path = %q", saved.SourcePath)
	}
}

func TestRunReconcile(t *testing.T) {
	f := newFixture(t, testScript)
	ctx := context.Background()
	if err := f.app.RunReconcile(ctx, ReconcileOptions{VideoMs: 10000, AudioMs: 12000}); err != nil {
		t.Fatalf("RunReconcile: %v", err)
	}
	if !strings.Contains(strings.Join(f.ui.info, "\n"), "0.8333") {
		t.Fatalf("info = %v", f.ui.info)
	}
	if err := f.app.RunReconcile(ctx, ReconcileOptions{VideoMs: 0, AudioMs: 1000}); !errors.Is(err, model.ErrInvalidDuration) {
		t.Fatalf("err = %v; want ErrInvalidDuration", err)
	}
}

func TestRunPlanWritesNothing(t *testing.T) {
	f := newFixture(t, testScript)
	if err := f.app.RunPlan(context.Background(), PlanOptions{Script: f.script, TotalMs: 9000}); err != nil {
		t.Fatalf("RunPlan: %v", err)
	}
	if len(f.ui.md) != 1 || !strings.Contains(f.ui.md[0], "Clips : 3") {
		t.Fatalf("plan output = %v", f.ui.md)
	}
	if _, err := os.Stat(f.cfg.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("plan created the output dir")
	}
}
