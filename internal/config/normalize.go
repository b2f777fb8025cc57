package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeServer()
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeLLM()
	c.normalizeRecommend()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	origins := c.Server.CORSOrigins[:0]
	for _, origin := range c.Server.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.CORSOrigins = origins
	if c.Server.RateLimitWindowSeconds <= 0 {
		c.Server.RateLimitWindowSeconds = defaultRateLimitWindowSeconds
	}
	if c.Server.ViewTTLMinutes <= 0 {
		c.Server.ViewTTLMinutes = defaultViewTTLMinutes
	}
	c.Server.AdminToken = strings.TrimSpace(c.Server.AdminToken)
	if c.Server.AdminToken == "" {
		c.Server.AdminToken = strings.TrimSpace(os.Getenv("GOODWATCH_ADMIN_TOKEN"))
	}
}

func (c *Config) normalizeStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Region = strings.ToUpper(strings.TrimSpace(c.TMDB.Region))
	if c.TMDB.Region == "" {
		c.TMDB.Region = defaultTMDBRegion
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultTMDBTimeoutSeconds
	}
	if c.TMDB.RequestIntervalMS < 0 {
		c.TMDB.RequestIntervalMS = 0
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"GOODWATCH_LLM_API_KEY", "OPENROUTER_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts <= 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeRecommend() {
	c.Recommend.Strategy = strings.ToLower(strings.TrimSpace(c.Recommend.Strategy))
	if c.Recommend.Strategy == "" {
		c.Recommend.Strategy = defaultStrategy
	}
	if c.Recommend.CandidateWindow <= 0 {
		c.Recommend.CandidateWindow = defaultCandidateWindow
	}
	if c.Recommend.ReplacementTimeoutSeconds <= 0 {
		c.Recommend.ReplacementTimeoutSeconds = defaultReplacementTimeoutSeconds
	}
	if c.Recommend.PosterTimeoutSeconds <= 0 {
		c.Recommend.PosterTimeoutSeconds = defaultPosterTimeoutSeconds
	}
	if c.Recommend.PoolTarget <= 0 {
		c.Recommend.PoolTarget = defaultPoolTarget
	}
	if c.Recommend.PoolLowWater < 0 {
		c.Recommend.PoolLowWater = defaultPoolLowWater
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
