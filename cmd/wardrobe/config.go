package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/unkn0wn-root/wardrobe/catalog"
)

type config struct {
	CatalogDir    string         `env:"WARDROBE_CATALOG_DIR" envDefault:"./data"`
	CatalogFormat catalog.Format `env:"WARDROBE_CATALOG_FORMAT" envDefault:"json"`

	// Exactly one of BundleDir / BundleURL.
	BundleDir      string         `env:"WARDROBE_BUNDLE_DIR"`
	BundleURL      string         `env:"WARDROBE_BUNDLE_URL"`
	BundleFormat   catalog.Format `env:"WARDROBE_BUNDLE_FORMAT" envDefault:"json"`
	BundleMaxBytes int64          `env:"WARDROBE_BUNDLE_MAX_BYTES" envDefault:"33554432"`
	FetchTimeout   time.Duration  `env:"WARDROBE_FETCH_TIMEOUT" envDefault:"30s"`

	Cache          string        `env:"WARDROBE_CACHE" envDefault:"none"` // none|ristretto|bigcache|redis
	CacheTTL       time.Duration `env:"WARDROBE_CACHE_TTL" envDefault:"1h"`
	CacheNamespace string        `env:"WARDROBE_CACHE_NAMESPACE" envDefault:"default"`
	CacheMaxMB     int           `env:"WARDROBE_CACHE_MAX_MB" envDefault:"256"`
	Revisions      string        `env:"WARDROBE_REVISIONS" envDefault:"local"` // local|redis
	RevisionTTL    time.Duration `env:"WARDROBE_REVISION_TTL" envDefault:"168h"`
	RedisAddr      string        `env:"WARDROBE_REDIS_ADDR" envDefault:"localhost:6379"`

	SetType      string   `env:"WARDROBE_SET_TYPE,required"`
	Gender       string   `env:"WARDROBE_GENDER" envDefault:"M"`
	Colors       []string `env:"WARDROBE_COLORS" envSeparator:","`
	Selected     string   `env:"WARDROBE_SELECTED"`
	Geometry     string   `env:"WARDROBE_GEOMETRY" envDefault:"vertical"`
	HiddenLayers []string `env:"WARDROBE_HIDDEN_LAYERS" envSeparator:","`
	ButtonColor  string   `env:"WARDROBE_BUTTON_COLOR" envDefault:"ffffff"`
	Width        int      `env:"WARDROBE_WIDTH" envDefault:"300"`
	Output       string   `env:"WARDROBE_OUTPUT" envDefault:"wardrobe.png"`

	LogFile      string `env:"WARDROBE_LOG_FILE" envDefault:"wardrobe.log"`
	Dev          bool   `env:"WARDROBE_DEV"`
	OTLPEndpoint string `env:"WARDROBE_OTLP_ENDPOINT"`
}

// loadConfig reads an optional .env file, then the environment.
// Variables already set win over the file.
func loadConfig(dotenv string) (config, error) {
	var cfg config
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch {
	case c.BundleDir == "" && c.BundleURL == "":
		return errors.New("config: WARDROBE_BUNDLE_DIR or WARDROBE_BUNDLE_URL is required")
	case c.BundleDir != "" && c.BundleURL != "":
		return errors.New("config: set only one of WARDROBE_BUNDLE_DIR and WARDROBE_BUNDLE_URL")
	}
	switch c.Cache {
	case "none", "ristretto", "bigcache", "redis":
	default:
		return fmt.Errorf("config: unknown cache %q", c.Cache)
	}
	switch c.Revisions {
	case "local", "redis":
	default:
		return fmt.Errorf("config: unknown revision store %q", c.Revisions)
	}
	if _, err := catalog.ParseColor(c.ButtonColor); err != nil {
		return fmt.Errorf("config: button color: %w", err)
	}
	return nil
}
