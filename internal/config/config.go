package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFeedURLs are the world-news feeds polled when FEED_URLS is unset.
var DefaultFeedURLs = []string{
	"https://feeds.bbci.co.uk/news/world/rss.xml",
	"https://rss.nytimes.com/services/xml/rss/nyt/World.xml",
	"https://www.aljazeera.com/xml/rss/all.xml",
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	FeedURLs       []string
	FeedTimeout    time.Duration
	FeedMaxEntries int

	GDELTLastUpdateURL   string
	GDELTTimeout         time.Duration
	GDELTMaxArchiveBytes int64

	// Per-view limits.
	RankedLimit      int
	RankedGDELTLimit int
	GeoGDELTLimit    int
	StatsGDELTLimit  int

	// Mapbox reverse geocoding for country backfill.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var errs []error
	duration := func(key, fallback string) time.Duration {
		d, err := parsePositiveDuration(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	integer := func(key string, fallback int) int {
		n, err := parsePositiveInt(key, fallback)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    duration("SHUTDOWN_TIMEOUT", "10s"),
		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		FeedURLs:       splitList(envOrDefault("FEED_URLS", strings.Join(DefaultFeedURLs, ","))),
		FeedTimeout:    duration("FEED_TIMEOUT", "30s"),
		FeedMaxEntries: integer("FEED_MAX_ENTRIES", 15),

		GDELTLastUpdateURL:   envOrDefault("GDELT_LASTUPDATE_URL", "http://data.gdeltproject.org/gdeltv2/lastupdate.txt"),
		GDELTTimeout:         duration("GDELT_TIMEOUT", "60s"),
		GDELTMaxArchiveBytes: int64(integer("GDELT_MAX_ARCHIVE_BYTES", 64<<20)),

		RankedLimit:      integer("RANKED_LIMIT", 100),
		RankedGDELTLimit: integer("RANKED_GDELT_LIMIT", 200),
		GeoGDELTLimit:    integer("GEO_GDELT_LIMIT", 300),
		StatsGDELTLimit:  integer("STATS_GDELT_LIMIT", 200),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   duration("MAPBOX_TIMEOUT", "5s"),
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if len(cfg.FeedURLs) == 0 {
		errs = append(errs, errors.New("FEED_URLS must contain at least one URL"))
	}
	if cfg.GDELTLastUpdateURL == "" {
		errs = append(errs, errors.New("GDELT_LASTUPDATE_URL is required"))
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		errs = append(errs, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	raw := envOrDefault(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, raw)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
