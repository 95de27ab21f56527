package script

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/patrickprogramme/dubsync/pkg/model"
)

const jsonScript = `{
    "title": "demo",
    "source_path": "media/demo.mp4",
    "source_language": "korean",
    "data": [
        {"start": 2000, "end": 5000, "source": "안녕하세요", "english": "Hello"},
        {"start": 6000, "end": 7500.4, "source": "감사합니다", "EN": "Thanks"}
    ]
}`

func TestParseJSON(t *testing.T) {
	s, err := Parse([]byte(jsonScript))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.SourceLanguage != model.LangKorean {
		t.Fatalf("source language = %s", s.SourceLanguage)
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d", s.Len())
	}
	seg, _ := s.Segment(1)
	if seg.End != 7500 {
		t.Fatalf("end = %d; want 7500", seg.End)
	}
	if text, ok := s.Text(0, model.LangEnglish); !ok || text != "Hello" {
		t.Fatalf("Text(0, EN) = %q, %v", text, ok)
	}
}

func TestParseSourceUnderLanguageKey(t *testing.T) {
	in := `
title: demo
source_language: KO
data:
  - {start: 0, end: 1000, KO: "하나"}
`
	s, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if text, _ := s.Text(0, model.LangKorean); text != "하나" {
		t.Fatalf("source text = %q", text)
	}
	if len(s.Languages()) != 0 {
		t.Fatalf("languages = %v; want none", s.Languages())
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"overlap", "source_language: KO\ndata:\n  - {start: 0, end: 3000, source: a}\n  - {start: 2000, end: 4000, source: b}\n", model.ErrInvalidSegmentOrder},
		{"partial language", "source_language: KO\ndata:\n  - {start: 0, end: 1000, source: a, EN: x}\n  - {start: 1000, end: 2000, source: b}\n", model.ErrInvalidTranslation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.in))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v; want %v", err, tc.want)
			}
		})
	}

	if _, err := Parse([]byte("data:\n  - {end: 1000}\n")); err == nil {
		t.Fatalf("missing start accepted")
	}
	if _, err := Parse(nil); err == nil {
		t.Fatalf("empty input accepted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := Parse([]byte(jsonScript))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := s.AddTranslation(model.LangJapanese, []string{"こんにちは", "ありがとう"}); err != nil {
		t.Fatalf("AddTranslation: %v", err)
	}

	for _, name := range []string{"script.yaml", "script.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, s); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Title != s.Title || got.SourcePath != s.SourcePath || got.Len() != s.Len() {
				t.Fatalf("got %s; want %s", got, s)
			}
			for i := 0; i < s.Len(); i++ {
				for _, lang := range []model.Language{model.LangKorean, model.LangEnglish, model.LangJapanese} {
					want, _ := s.Text(i, lang)
					if text, _ := got.Text(i, lang); text != want {
						t.Errorf("Text(%d, %s) = %q; want %q", i, lang, text, want)
					}
				}
			}
		})
	}
}
