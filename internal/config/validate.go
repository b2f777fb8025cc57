package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	return c.validateRecommend()
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitRequests < 0 {
		return errors.New("server.rate_limit_requests must be zero (disabled) or positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.Recommend.Strategy == StrategyGenerative && c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("llm.api_key is required for the generative strategy. Set OPENROUTER_API_KEY env var or edit %s (create with 'goodwatch config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	switch c.Recommend.Strategy {
	case StrategyCatalog, StrategyGenerative:
	default:
		return fmt.Errorf("recommend.strategy must be %q or %q, got %q", StrategyCatalog, StrategyGenerative, c.Recommend.Strategy)
	}
	if c.Recommend.PoolLowWater >= c.Recommend.PoolTarget {
		return fmt.Errorf("recommend.pool_low_water (%d) must be below recommend.pool_target (%d)", c.Recommend.PoolLowWater, c.Recommend.PoolTarget)
	}
	if c.Recommend.BlockbusterPopularity < 0 {
		return errors.New("recommend.blockbuster_popularity must not be negative")
	}
	if c.Recommend.FreshnessDays < 0 {
		return errors.New("recommend.freshness_days must not be negative")
	}
	return nil
}
