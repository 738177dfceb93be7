package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/collagefm/pkg/cache"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"LASTFM_API_KEY", "DISCOGS_TOKEN", "TELEGRAM_TOKEN", "COLLAGEFM_CACHE", "COLLAGEFM_REDIS_URL", "COLLAGEFM_MONGO_URI"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[lastfm]
api_key = "file-key"

[defaults]
username = "rj"
period = "1month"
grid_size = 6
arrange = "hue"
labels = true

[cache]
backend = "badger"
dir = "/tmp/collagefm-test"

[[schedule.jobs]]
name = "weekly"
cron = "0 9 * * MON"
username = "alice"
rows = 3
cols = 3
labels = false
chat_id = -100123

[[schedule.jobs]]
name = "monthly"
cron = "@monthly"
output_dir = "/srv/collages"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LastFM.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.LastFM.APIKey)
	}
	if cfg.Defaults.GridSize != 6 || cfg.Defaults.Format != "png" || cfg.Defaults.ItemType != "albums" {
		t.Errorf("defaults = %+v, want file values over built-in defaults", cfg.Defaults)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
	if len(cfg.Schedule.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(cfg.Schedule.Jobs))
	}

	weekly := cfg.Schedule.Jobs[0].Options(cfg.Defaults)
	want := pipeline.Options{
		Username: "alice",
		Period:   "1month",
		ItemType: "albums",
		Layout:   pipeline.LayoutFixed,
		GridSize: 6,
		Rows:     3,
		Cols:     3,
		Arrange:  "hue",
		Labels:   false,
		Format:   "png",
	}
	if diff := cmp.Diff(want, weekly, cmpopts.IgnoreUnexported(pipeline.Options{})); diff != "" {
		t.Errorf("weekly job options (-want +got):\n%s", diff)
	}

	monthly := cfg.Schedule.Jobs[1].Options(cfg.Defaults)
	if monthly.Username != "rj" || monthly.GridSize != 6 || !monthly.Labels {
		t.Errorf("monthly job should inherit defaults, got %+v", monthly)
	}

	opts, err := cfg.CacheOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != cache.BackendBadger || opts.Dir != "/tmp/collagefm-test" {
		t.Errorf("CacheOptions() = %+v", opts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LASTFM_API_KEY", "env-key")
	t.Setenv("COLLAGEFM_CACHE", "redis")
	t.Setenv("COLLAGEFM_REDIS_URL", "redis://localhost:6379/1")
	path := writeConfig(t, "[lastfm]\napi_key = \"file-key\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LastFM.APIKey != "env-key" {
		t.Errorf("APIKey = %q, env should win", cfg.LastFM.APIKey)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != "redis://localhost:6379/1" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
	}{
		{"malformed", "[lastfm\napi_key = 1"},
		{"unknown key", "[lastfm]\napikey = \"x\"\n"},
		{"bad cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad store backend", "[store]\nbackend = \"s3\"\n"},
		{"job without cron", "[[schedule.jobs]]\nusername = \"rj\"\n"},
		{"duplicate job", "[[schedule.jobs]]\nname = \"a\"\ncron = \"@daily\"\n[[schedule.jobs]]\nname = \"a\"\ncron = \"@daily\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/xdg", "collagefm", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestCacheOptionsDefaultDir(t *testing.T) {
	cfg := Default()
	opts, err := cfg.CacheOptions()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if opts.Backend != cache.BackendFile || filepath.Base(opts.Dir) != "http" {
		t.Errorf("CacheOptions() = %+v, want file cache under the user cache dir", opts)
	}
}

func TestCacheOptionsBadgerDefaultDir(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = string(cache.BackendBadger)
	opts, err := cfg.CacheOptions()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if filepath.Base(opts.Dir) != "badger" {
		t.Errorf("badger dir = %q, want a badger directory under the user cache dir", opts.Dir)
	}
}
