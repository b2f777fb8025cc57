package testsupport

import (
	"path/filepath"
	"testing"

	"goodwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp database per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Store.Path = filepath.Join(base, "data", "goodwatch.db")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithTMDBBaseURL points TMDB lookups at a test server.
func WithTMDBBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
		b.cfg.TMDB.RequestIntervalMS = 0
	}
}

// WithGenerative enables the generative strategy against a test gateway.
func WithGenerative(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Recommend.Strategy = config.StrategyGenerative
		b.cfg.LLM.APIKey = "test"
		b.cfg.LLM.BaseURL = baseURL
	}
}

// WithAdminToken sets the bearer token guarding admin endpoints.
func WithAdminToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.AdminToken = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.DataDir())
}

// WithRateLimit sets the per-client request limit for API routes.
func WithRateLimit(requests, windowSeconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.RateLimitRequests = requests
		b.cfg.Server.RateLimitWindowSeconds = windowSeconds
	}
}
