package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "a", "b", "clips.yaml")

	if err := WriteFileAtomic(dest, []byte("clips: []\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "clips: []\n" {
		t.Fatalf("content = %q", got)
	}

	// aucun fichier temporaire ne doit rester dans le dossier
	entries, _ := os.ReadDir(filepath.Dir(dest))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestTempSiblingKeepsExtension(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "video", "segment_000003.mp4")

	tmp, err := TempSibling(dest)
	if err != nil {
		t.Fatalf("TempSibling: %v", err)
	}
	if filepath.Dir(tmp) != filepath.Dir(dest) {
		t.Fatalf("temp file in %s; want %s", filepath.Dir(tmp), filepath.Dir(dest))
	}
	if filepath.Ext(tmp) != ".mp4" {
		t.Fatalf("temp ext = %q; want .mp4", filepath.Ext(tmp))
	}
	if ok, _ := FileExists(dest); ok {
		t.Fatalf("dest must not exist before commit")
	}

	if err := CommitFile(tmp, dest); err != nil {
		t.Fatalf("CommitFile: %v", err)
	}
	if ok, err := FileExists(dest); !ok || err != nil {
		t.Fatalf("dest after commit: exists=%v err=%v", ok, err)
	}
	if ok, _ := FileExists(tmp); ok {
		t.Fatalf("temp file still present after commit")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "untitled"},
		{"demo: part 1", "Demo- part 1"},
		{"a/b\\c", "A b c"},
		{"  trailing...  ", "Trailing"},
		{"???", "untitled"},
	}
	for _, tc := range tests {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsDirEmpty(t *testing.T) {
	dir := t.TempDir()
	if empty, err := IsDirEmpty(dir); err != nil || !empty {
		t.Fatalf("IsDirEmpty(new dir) = %v, %v", empty, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "segment_000000.mp4"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if empty, _ := IsDirEmpty(dir); empty {
		t.Fatalf("IsDirEmpty = true with one file")
	}
	if _, err := IsDirEmpty(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("missing dir accepted")
	}
}
