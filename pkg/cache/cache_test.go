package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exerciseCache runs the behaviour every persistent backend must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "chart:rj", []byte(`{"items":3}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "chart:rj")
	if err != nil || !hit {
		t.Fatalf("Get after Set = hit %v, err %v", hit, err)
	}
	if !bytes.Equal(data, []byte(`{"items":3}`)) {
		t.Errorf("Get = %q", data)
	}

	// Overwrite
	if err := c.Set(ctx, "chart:rj", []byte("v2"), 0); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	data, _, _ = c.Get(ctx, "chart:rj")
	if string(data) != "v2" {
		t.Errorf("Get after overwrite = %q, want v2", data)
	}

	if err := c.Delete(ctx, "chart:rj"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "chart:rj"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get(ctx, "k")
	if err != nil || hit {
		t.Errorf("corrupt entry: hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheRequiresDir(t *testing.T) {
	if _, err := NewFileCache(""); err == nil {
		t.Error("NewFileCache(\"\") should fail")
	}
}

func TestBadgerCacheInMemory(t *testing.T) {
	c, err := NewBadgerCache("")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exerciseCache(t, c)
}

func TestBadgerCacheOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := NewBadgerCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "image:abc", []byte{0x89, 'P', 'N', 'G'}, 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewBadgerCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	data, hit, err := reopened.Get(ctx, "image:abc")
	if err != nil || !hit || len(data) != 4 {
		t.Errorf("after reopen: data %v hit %v err %v", data, hit, err)
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{"empty backend", Options{}, "*cache.NullCache", false},
		{"none", Options{Backend: BackendNone}, "*cache.NullCache", false},
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache", false},
		{"badger memory", Options{Backend: BackendBadger}, "*cache.BadgerCache", false},
		{"file without dir", Options{Backend: BackendFile}, "", true},
		{"redis without url", Options{Backend: BackendRedis}, "", true},
		{"unknown", Options{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if c != nil {
					t.Error("Open() returned a cache alongside an error")
				}
				return
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *NullCache:
		return "*cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *BadgerCache:
		return "*cache.BadgerCache"
	case *RedisCache:
		return "*cache.RedisCache"
	}
	return "unknown"
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("lastfm", "user.gettopalbums:rj"); got != "http:lastfm:user.gettopalbums:rj" {
		t.Errorf("HTTPKey unexpected: %s", got)
	}

	ik := k.ImageKey("https://img.example/a.png")
	if !strings.HasPrefix(ik, "image:") || ik == k.ImageKey("https://img.example/b.png") {
		t.Errorf("ImageKey unexpected: %s", ik)
	}

	c1 := k.ChartKey(ChartKeyOpts{Source: "lastfm", Username: "rj", ItemType: "albums", Period: "7day", Limit: 10})
	c2 := k.ChartKey(ChartKeyOpts{Source: "lastfm", Username: "rj", ItemType: "albums", Period: "1month", Limit: 10})
	if c1 == c2 {
		t.Error("Different periods should produce different chart keys")
	}
	if c3 := k.ChartKey(ChartKeyOpts{Source: "lastfm", Username: "RJ", ItemType: "albums", Period: "7day", Limit: 10}); c3 != c1 {
		t.Error("Chart keys should ignore username case")
	}

	k1 := k.CollageKey(CollageKeyOpts{ItemsHash: "h", Rows: 4, Cols: 4, Variant: "1", Format: "png"})
	k2 := k.CollageKey(CollageKeyOpts{ItemsHash: "h", Rows: 4, Cols: 4, Variant: "2", Format: "png"})
	if k1 == k2 {
		t.Error("Different variants should produce different collage keys")
	}

	base := CollageKeyOpts{ItemsHash: "h", Layout: "fixed", Rows: 4, Cols: 4, Seed: 5, Format: "png"}
	variants := map[string]CollageKeyOpts{
		"template":    {ItemsHash: "h", Layout: "varying", GridSize: 4, Rows: 4, Cols: 4, Seed: 5, Format: "png"},
		"placeholder": {ItemsHash: "h", Layout: "fixed", Rows: 4, Cols: 4, Seed: 5, Placeholder: true, Format: "png"},
		"seed":        {ItemsHash: "h", Layout: "fixed", Rows: 4, Cols: 4, Seed: 6, Format: "png"},
	}
	for name, opts := range variants {
		if k.CollageKey(opts) == k.CollageKey(base) {
			t.Errorf("%s change should produce a different collage key", name)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "job:weekly:")

	if got := scoped.HTTPKey("discogs", "artist:Björk"); got != "job:weekly:http:discogs:artist:Björk" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", got)
	}

	for _, key := range []string{
		scoped.ImageKey("x"),
		scoped.ChartKey(ChartKeyOpts{}),
		scoped.CollageKey(CollageKeyOpts{}),
	} {
		if !strings.HasPrefix(key, "job:weekly:") {
			t.Errorf("key should be prefixed: %s", key)
		}
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.HTTPKey("test", "key"); key != "prefix:http:test:key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
