package ui

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetSourcePathPrefersClipboard(t *testing.T) {
	var out bytes.Buffer
	tui := newTerminal(strings.NewReader(""), &out, &out)
	tui.readClipboard = func() (string, bool) { return "/videos/demo.mp4", true }

	got, err := tui.GetSourcePath(context.Background())
	if err != nil {
		t.Fatalf("GetSourcePath: %v", err)
	}
	if got != "/videos/demo.mp4" {
		t.Fatalf("path = %q", got)
	}
}

func TestGetSourcePathPromptsUntilFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "demo.mp4")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out, errOut bytes.Buffer
	tui := newTerminal(strings.NewReader("/nope.mp4\n"+file+"\n"), &out, &errOut)
	tui.readClipboard = func() (string, bool) { return "", false }

	got, err := tui.GetSourcePath(context.Background())
	if err != nil {
		t.Fatalf("GetSourcePath: %v", err)
	}
	if got != file {
		t.Fatalf("path = %q; want %q", got, file)
	}
	if !strings.Contains(errOut.String(), "introuvable") {
		t.Fatalf("no retry message: %q", errOut.String())
	}
}

func TestGetSourcePathEOF(t *testing.T) {
	var out bytes.Buffer
	tui := newTerminal(strings.NewReader(""), &out, &out)
	tui.readClipboard = func() (string, bool) { return "", false }
	if _, err := tui.GetSourcePath(context.Background()); err == nil {
		t.Fatalf("EOF accepted as a path")
	}
}

func TestStripFrontmatter(t *testing.T) {
	in := []byte("---\ntitle: x\n---\n\n# Titre\n")
	if got := string(stripFrontmatter(in)); got != "# Titre\n" {
		t.Fatalf("stripFrontmatter = %q", got)
	}
	plain := []byte("# Titre\n")
	if got := string(stripFrontmatter(plain)); got != "# Titre\n" {
		t.Fatalf("stripFrontmatter(plain) = %q", got)
	}
}
