// Package config loads the collagefm configuration file.
//
// The file is TOML, read from $XDG_CONFIG_HOME/collagefm/config.toml (or
// ~/.config/collagefm/config.toml). A missing file is not an error: every
// setting has a default, and secrets are usually supplied through the
// environment instead:
//
//	LASTFM_API_KEY        [lastfm] api_key
//	DISCOGS_TOKEN         [discogs] token
//	TELEGRAM_TOKEN        [telegram] token
//	COLLAGEFM_CACHE       [cache] backend
//	COLLAGEFM_REDIS_URL   [cache] redis_url
//	COLLAGEFM_MONGO_URI   [store] mongo_uri
//
// Environment values win over the file; command-line flags win over both.
//
// # Example
//
//	[lastfm]
//	api_key = "..."
//
//	[defaults]
//	username = "rj"
//	period = "1month"
//	grid_size = 5
//	arrange = "hue"
//
//	[cache]
//	backend = "badger"
//
//	[[schedule.jobs]]
//	name = "weekly"
//	cron = "0 9 * * MON"
//	username = "rj"
//	chat_id = -1001234567890
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/collagefm/pkg/cache"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/pipeline"
	"github.com/matzehuels/collagefm/pkg/store"
)

// AppName names the config, cache and data directories.
const AppName = "collagefm"

// DefaultServerAddr is the listen address of the HTTP API.
const DefaultServerAddr = ":8080"

// Config is the whole configuration file.
type Config struct {
	LastFM   LastFM   `toml:"lastfm"`
	Discogs  Discogs  `toml:"discogs"`
	Defaults Defaults `toml:"defaults"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
	Telegram Telegram `toml:"telegram"`
	Schedule Schedule `toml:"schedule"`
}

type LastFM struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type Discogs struct {
	Token string `toml:"token"`
}

// Defaults are the collage settings used when a flag or request leaves
// them unset.
type Defaults struct {
	Username string `toml:"username"`
	Period   string `toml:"period"`
	ItemType string `toml:"item_type"`
	GridSize int    `toml:"grid_size"`
	Arrange  string `toml:"arrange"`
	Labels   bool   `toml:"labels"`
	CellSize int    `toml:"cell_size"`
	Format   string `toml:"format"`
}

type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

type Store struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

type Server struct {
	Addr string `toml:"addr"`
}

type Telegram struct {
	Token     string `toml:"token"`
	ServerURL string `toml:"server_url"`
}

type Schedule struct {
	Jobs []Job `toml:"jobs"`
}

// Job is one recurring collage. Unset collage fields fall back to
// [Defaults].
type Job struct {
	Name      string `toml:"name"`
	Cron      string `toml:"cron"`
	Username  string `toml:"username"`
	Period    string `toml:"period"`
	ItemType  string `toml:"item_type"`
	GridSize  int    `toml:"grid_size"`
	Rows      int    `toml:"rows"`
	Cols      int    `toml:"cols"`
	Arrange   string `toml:"arrange"`
	Labels    *bool  `toml:"labels"`
	Format    string `toml:"format"`
	ChatID    int64  `toml:"chat_id"`
	OutputDir string `toml:"output_dir"`
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Defaults: Defaults{
			Period:   "7day",
			ItemType: string(pipeline.DefaultItemType),
			GridSize: pipeline.DefaultGridSize,
			Arrange:  "rank",
			Format:   "png",
		},
		Cache:  Cache{Backend: string(cache.BackendFile)},
		Store:  Store{Backend: string(store.BackendMemory)},
		Server: Server{Addr: DefaultServerAddr},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default directory for file and badger caches.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// Load reads the file at path over [Default] and applies environment
// overrides. An empty path means [Path]. A missing file yields the
// defaults; a malformed file or unknown key is an INVALID_INPUT error.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = Default()
	case err != nil:
		return Config{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config %s", path)
	default:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown keys %v", path, undecoded)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.LastFM.APIKey, "LASTFM_API_KEY")
	set(&c.Discogs.Token, "DISCOGS_TOKEN")
	set(&c.Telegram.Token, "TELEGRAM_TOKEN")
	set(&c.Cache.Backend, "COLLAGEFM_CACHE")
	set(&c.Cache.RedisURL, "COLLAGEFM_REDIS_URL")
	set(&c.Store.MongoURI, "COLLAGEFM_MONGO_URI")
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch cache.Backend(c.Cache.Backend) {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis, cache.BackendBadger:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "cache backend %q (must be none, file, redis or badger)", c.Cache.Backend)
	}
	switch store.Backend(c.Store.Backend) {
	case "", store.BackendMemory, store.BackendFile, store.BackendMongo:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "store backend %q (must be memory, file or mongo)", c.Store.Backend)
	}
	names := make(map[string]bool, len(c.Schedule.Jobs))
	for i, j := range c.Schedule.Jobs {
		if j.Cron == "" {
			return errs.New(errs.ErrCodeInvalidInput, "schedule job %d: cron is required", i)
		}
		if j.Name != "" && names[j.Name] {
			return errs.New(errs.ErrCodeInvalidInput, "schedule job %q defined twice", j.Name)
		}
		names[j.Name] = true
	}
	return nil
}

// CacheOptions returns the cache settings, filling in the default
// directory for the file and badger backends.
func (c *Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:  cache.Backend(c.Cache.Backend),
		Dir:      c.Cache.Dir,
		RedisURL: c.Cache.RedisURL,
	}
	if opts.Dir == "" && (opts.Backend == cache.BackendFile || opts.Backend == cache.BackendBadger) {
		dir, err := CacheDir()
		if err != nil {
			return cache.Options{}, err
		}
		sub := "http"
		if opts.Backend == cache.BackendBadger {
			sub = "badger"
		}
		opts.Dir = filepath.Join(dir, sub)
	}
	return opts, nil
}

// StoreOptions returns the record store settings.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  store.Backend(c.Store.Backend),
		Dir:      c.Store.Dir,
		MongoURI: c.Store.MongoURI,
		Database: c.Store.Database,
	}
}

// Options returns pipeline options seeded from the defaults.
func (d Defaults) Options() pipeline.Options {
	return pipeline.Options{
		Username: d.Username,
		Period:   d.Period,
		ItemType: d.ItemType,
		GridSize: d.GridSize,
		Arrange:  d.Arrange,
		Labels:   d.Labels,
		CellSize: d.CellSize,
		Format:   d.Format,
	}
}

// Options returns the pipeline options for the job, with unset fields
// taken from d.
func (j Job) Options(d Defaults) pipeline.Options {
	opts := d.Options()
	if j.Username != "" {
		opts.Username = j.Username
	}
	if j.Period != "" {
		opts.Period = j.Period
	}
	if j.ItemType != "" {
		opts.ItemType = j.ItemType
	}
	if j.Rows != 0 || j.Cols != 0 {
		opts.Layout = pipeline.LayoutFixed
		opts.Rows, opts.Cols = j.Rows, j.Cols
	} else if j.GridSize != 0 {
		opts.GridSize = j.GridSize
	}
	if j.Arrange != "" {
		opts.Arrange = j.Arrange
	}
	if j.Labels != nil {
		opts.Labels = *j.Labels
	}
	if j.Format != "" {
		opts.Format = j.Format
	}
	return opts
}
