package config

const (
	defaultConfigPath                = "~/.config/goodwatch/config.toml"
	defaultBind                      = "127.0.0.1:8787"
	defaultRateLimitRequests         = 30
	defaultRateLimitWindowSeconds    = 60
	defaultViewTTLMinutes            = 30
	defaultStorePath                 = "~/.local/share/goodwatch/goodwatch.db"
	defaultTMDBBaseURL               = "https://api.themoviedb.org/3"
	defaultTMDBLanguage              = "en-US"
	defaultTMDBRegion                = "IN"
	defaultTMDBTimeoutSeconds        = 10
	defaultTMDBRequestIntervalMS     = 250
	defaultLLMBaseURL                = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel                  = "google/gemini-2.5-flash"
	defaultLLMReferer                = "https://goodwatch.local"
	defaultLLMTitle                  = "GoodWatch"
	defaultLLMTimeoutSeconds         = 20
	defaultLLMTemperature            = 0.8
	defaultLLMRetryAttempts          = 1
	defaultStrategy                  = StrategyCatalog
	defaultCandidateWindow           = 30
	defaultBlockbusterPopularity     = 100
	defaultFreshnessDays             = 30
	defaultReplacementTimeoutSeconds = 3
	defaultPosterTimeoutSeconds      = 3
	defaultPoolLowWater              = 2
	defaultPoolTarget                = 6
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

// Recommendation strategies accepted by recommend.strategy.
const (
	StrategyCatalog    = "catalog"
	StrategyGenerative = "generative"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:                   defaultBind,
			CORSOrigins:            []string{"*"},
			RateLimitRequests:      defaultRateLimitRequests,
			RateLimitWindowSeconds: defaultRateLimitWindowSeconds,
			ViewTTLMinutes:         defaultViewTTLMinutes,
		},
		Store: Store{Path: defaultStorePath},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			Language:          defaultTMDBLanguage,
			Region:            defaultTMDBRegion,
			TimeoutSeconds:    defaultTMDBTimeoutSeconds,
			RequestIntervalMS: defaultTMDBRequestIntervalMS,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			Temperature:    defaultLLMTemperature,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Recommend: Recommend{
			Strategy:                  defaultStrategy,
			CandidateWindow:           defaultCandidateWindow,
			BlockbusterPopularity:     defaultBlockbusterPopularity,
			FreshnessDays:             defaultFreshnessDays,
			ReplacementTimeoutSeconds: defaultReplacementTimeoutSeconds,
			PosterTimeoutSeconds:      defaultPosterTimeoutSeconds,
			PoolLowWater:              defaultPoolLowWater,
			PoolTarget:                defaultPoolTarget,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
