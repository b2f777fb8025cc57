package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP listener settings.
type Server struct {
	Bind                   string   `toml:"bind"`
	CORSOrigins            []string `toml:"cors_origins"`
	RateLimitRequests      int      `toml:"rate_limit_requests"`
	RateLimitWindowSeconds int      `toml:"rate_limit_window_seconds"`
	ViewTTLMinutes         int      `toml:"view_ttl_minutes"`
	AdminToken             string   `toml:"admin_token"`
}

// Store contains the SQLite catalog location.
type Store struct {
	Path string `toml:"path"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Language          string `toml:"language"`
	Region            string `toml:"region"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	RequestIntervalMS int    `toml:"request_interval_ms"`
}

// LLM contains the model gateway connection used by the generative strategy.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Referer        string  `toml:"referer"`
	Title          string  `toml:"title"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	Temperature    float64 `toml:"temperature"`
	RetryAttempts  int     `toml:"retry_attempts"`
}

// Recommend tunes the recommendation generator and replacement pools.
type Recommend struct {
	Strategy                  string  `toml:"strategy"`
	CandidateWindow           int     `toml:"candidate_window"`
	BlockbusterPopularity     float64 `toml:"blockbuster_popularity"`
	FreshnessDays             int     `toml:"freshness_days"`
	ReplacementTimeoutSeconds int     `toml:"replacement_timeout_seconds"`
	PosterTimeoutSeconds      int     `toml:"poster_timeout_seconds"`
	PoolLowWater              int     `toml:"pool_low_water"`
	PoolTarget                int     `toml:"pool_target"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for goodwatch.
//
// Configuration sections by subsystem:
//   - Server: HTTP bind address, CORS, rate limiting, view lifetime
//   - Store: SQLite catalog and history database
//   - TMDB: catalog import and poster lookup
//   - LLM: model gateway for the generative strategy
//   - Recommend: strategy selection and pool tuning
//   - Logging: log format and level
type Config struct {
	Server    Server    `toml:"server"`
	Store     Store     `toml:"store"`
	TMDB      TMDB      `toml:"tmdb"`
	LLM       LLM       `toml:"llm"`
	Recommend Recommend `toml:"recommend"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("goodwatch.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directory holding the database.
func (c *Config) EnsureDirectories() error {
	dir := filepath.Dir(c.Store.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// DataDir returns the directory holding the database and lock files.
func (c *Config) DataDir() string {
	return filepath.Dir(c.Store.Path)
}

// GenerativeEnabled reports whether the generative strategy can be used.
func (c *Config) GenerativeEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

// ReplacementTimeout bounds the synchronous single-item replacement fetch.
func (c *Config) ReplacementTimeout() time.Duration {
	return time.Duration(c.Recommend.ReplacementTimeoutSeconds) * time.Second
}

// PosterTimeout bounds each concurrent poster lookup.
func (c *Config) PosterTimeout() time.Duration {
	return time.Duration(c.Recommend.PosterTimeoutSeconds) * time.Second
}

// ViewTTL is how long an untouched results view keeps its replacement pool.
func (c *Config) ViewTTL() time.Duration {
	return time.Duration(c.Server.ViewTTLMinutes) * time.Minute
}

// RateLimitWindow is the window for per-client request limits.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Server.RateLimitWindowSeconds) * time.Second
}

// TMDBRequestInterval is the minimum spacing between TMDB requests.
func (c *Config) TMDBRequestInterval() time.Duration {
	return time.Duration(c.TMDB.RequestIntervalMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
