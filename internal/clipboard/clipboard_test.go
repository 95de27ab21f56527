package clipboard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  /tmp/a.mp4 \n", "/tmp/a.mp4"},
		{`"C:/videos/demo.mp4"`, "C:/videos/demo.mp4"},
		{"\ufeff/tmp/b.mp4", "/tmp/b.mp4"},
		{"file:///tmp/c.mp4", "/tmp/c.mp4"},
		{"/tmp/d.mp4\nautre ligne", "/tmp/d.mp4"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := CleanPath(tc.in); got != tc.want {
			t.Errorf("CleanPath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestExistingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "demo.mp4")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got, ok := ExistingFile(` "` + file + `" `); !ok || got != file {
		t.Fatalf("ExistingFile(file) = %q, %v", got, ok)
	}
	if _, ok := ExistingFile(dir); ok {
		t.Fatalf("a directory is not a source file")
	}
	if _, ok := ExistingFile(filepath.Join(dir, "missing.mp4")); ok {
		t.Fatalf("missing file accepted")
	}
	if _, ok := ExistingFile("https://example.com/v.mp4"); ok {
		t.Fatalf("url accepted")
	}
}
