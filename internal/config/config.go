// Package config loads tripgeo service settings from an optional YAML file,
// an optional .env file and TRIPGEO_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvAddr        = "TRIPGEO_ADDR"
	EnvDataFile    = "TRIPGEO_DATA_FILE"
	EnvLogLevel    = "TRIPGEO_LOG_LEVEL"
	EnvLogFormat   = "TRIPGEO_LOG_FORMAT"
	EnvRateLimit   = "TRIPGEO_RATE_LIMIT"
	EnvRateBurst   = "TRIPGEO_RATE_BURST"
	EnvCacheTTL    = "TRIPGEO_CACHE_TTL"
	EnvCORSOrigins = "TRIPGEO_CORS_ORIGINS"
)

// Log formats.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config structure for YAML configuration
type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       float64       `yaml:"rate_limit"` // requests per second, 0 disables
		RateBurst       int           `yaml:"rate_burst"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Catalog struct {
		DataFile string `yaml:"data_file"` // empty means the embedded table
	} `yaml:"catalog"`
	Cache struct {
		TTL time.Duration `yaml:"ttl"` // 0 disables the search cache
	} `yaml:"cache"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns a configuration that is valid without any file or
// environment.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second
	cfg.Server.RateLimit = 20
	cfg.Server.RateBurst = 40
	cfg.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	cfg.Cache.TTL = 10 * time.Minute
	cfg.Log.Level = "info"
	cfg.Log.Format = FormatAuto
	return cfg
}

// Load builds a Config from defaults, then the YAML file at path (if path is
// not empty), then .env in the working directory (if present), then the
// process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvDataFile); ok {
		c.Catalog.DataFile = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.Server.RateLimit = f
	}
	if v, ok := lookup(EnvRateBurst); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateBurst, err)
		}
		c.Server.RateBurst = n
	}
	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheTTL, err)
		}
		c.Cache.TTL = d
	}
	if v, ok := lookup(EnvCORSOrigins); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be >= 1 when rate limiting, got %d", c.Server.RateBurst)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be >= 0, got %v", c.Cache.TTL)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case FormatAuto, FormatText, FormatJSON:
	default:
		return fmt.Errorf("log.format must be one of auto, text, json; got %q", c.Log.Format)
	}
	return nil
}

// NewLogger returns a slog.Logger writing to w at the configured level.
// The auto format picks text for terminals and JSON otherwise.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := strings.ToLower(c.Log.Format)
	if format == FormatAuto {
		format = FormatJSON
		if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = FormatText
		}
	}
	if format == FormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
