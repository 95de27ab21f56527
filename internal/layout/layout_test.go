package layout

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/patrickprogramme/dubsync/pkg/model"
)

func TestClipNamesSortLexically(t *testing.T) {
	idx := []int{10, 2, 100000, 0, 99}
	names := make([]string, len(idx))
	for i, n := range idx {
		names[i] = ClipName(n, model.FormatWAV)
	}
	sort.Strings(names)
	sort.Ints(idx)
	for i, name := range names {
		got, ok := ParseClipIndex(name)
		if !ok || got != idx[i] {
			t.Fatalf("names[%d] = %s parsed to %d (ok=%v); want %d", i, name, got, ok, idx[i])
		}
	}
	if ClipName(42, model.FormatMP4) != "segment_000042.mp4" {
		t.Fatalf("ClipName = %s", ClipName(42, model.FormatMP4))
	}
}

func TestParseClipIndexRejects(t *testing.T) {
	for _, name := range []string{"segment_42.wav", "clip_000001.wav", "segment_00000a.wav", ""} {
		if _, ok := ParseClipIndex(name); ok {
			t.Errorf("ParseClipIndex(%q) accepted", name)
		}
	}
}

func TestPaths(t *testing.T) {
	l := New("results", "demo: one")
	if l.Root != filepath.Join("results", "Demo- one") {
		t.Fatalf("root = %s", l.Root)
	}
	if got, want := l.LangAudio(3, model.LangEnglish), filepath.Join(l.Root, "audio", "EN", "segment_000003.wav"); got != want {
		t.Fatalf("LangAudio = %s; want %s", got, want)
	}
	if got, want := l.Output(model.LangEnglish), filepath.Join(l.Root, "[EN]_Demo- one.mp4"); got != want {
		t.Fatalf("Output = %s; want %s", got, want)
	}
	if got := l.Abs(l.Rel(l.VideoClip(1))); got != l.VideoClip(1) {
		t.Fatalf("Abs(Rel) = %s", got)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	l := New(t.TempDir(), "demo")
	cs := model.ClipSet{
		Title:          "demo",
		SourceLanguage: model.LangKorean,
		Total:          9000,
		FPS:            25,
		SampleRate:     16000,
		Clips: []model.Clip{
			{Index: 0, Kind: model.ClipFiller, Start: 0, End: 2000, Segment: -1},
			{Index: 1, Kind: model.ClipContent, Start: 2000, End: 5000, Segment: 0},
			{Index: 2, Kind: model.ClipFiller, Start: 5000, End: 9000, Segment: -1},
		},
	}
	if err := l.WriteManifest(cs); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	got, err := l.ReadManifest()
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(got.Clips) != 3 || got.Clips[1].Kind != model.ClipContent || got.Total != 9000 {
		t.Fatalf("manifest mismatch: %+v", got)
	}
}

func TestReadManifestRejectsGap(t *testing.T) {
	l := New(t.TempDir(), "demo")
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		t.Fatal(err)
	}
	data := []byte("clips:\n  - {index: 0, kind: content, start: 0, end: 1000}\n  - {index: 1, kind: content, start: 1500, end: 2000}\n")
	if err := os.WriteFile(l.Manifest(), data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.ReadManifest(); !errors.Is(err, model.ErrInvalidSegmentOrder) {
		t.Fatalf("err = %v; want ErrInvalidSegmentOrder", err)
	}
}

func TestForScriptSanitizesTitle(t *testing.T) {
	s, err := model.NewScript("my video: part 1", "in.mp4", model.LangEnglish, nil)
	if err != nil {
		t.Fatal(err)
	}
	l := ForScript("results", s)
	if want := filepath.Join("results", "My video- part 1"); l.Root != want {
		t.Fatalf("root = %q; want %q", l.Root, want)
	}
	if l.Title != s.Title {
		t.Fatalf("title = %q", l.Title)
	}
}
