package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "charts/b.json", "charts/deep/c.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	count, err := clearDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("clearDir() removed %d files, want 3", count)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left in cache dir", len(entries))
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir itself should survive: %v", err)
	}

	if n, err := clearDir(filepath.Join(dir, "missing")); err != nil || n != 0 {
		t.Errorf("clearDir(missing) = %d, %v; want 0, nil", n, err)
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		flag, want string
	}{
		{"", "collage.png"},
		{dir, filepath.Join(dir, "collage.png")},
		{filepath.Join(dir, "mine.png"), filepath.Join(dir, "mine.png")},
	}
	for _, tt := range tests {
		if got := outputPath(tt.flag, "collage.png"); got != tt.want {
			t.Errorf("outputPath(%q) = %q, want %q", tt.flag, got, tt.want)
		}
	}
}
