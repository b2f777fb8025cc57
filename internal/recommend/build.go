package recommend

import (
	"log/slog"
	"net/http"
	"time"

	"goodwatch/internal/config"
	"goodwatch/internal/services"
	"goodwatch/internal/services/llm"
	"goodwatch/internal/services/tmdb"
)

// New builds the strategy selected by recommend.strategy, wrapped with
// metrics. The generative strategy attaches posters only when a TMDB key is
// configured.
func New(cfg *config.Config, movies MovieSource, logger *slog.Logger) (Recommender, error) {
	switch cfg.Recommend.Strategy {
	case config.StrategyCatalog:
		return Instrument(NewCatalogRecommender(movies, CatalogOptions{
			CandidateWindow:       cfg.Recommend.CandidateWindow,
			BlockbusterPopularity: cfg.Recommend.BlockbusterPopularity,
		}, logger), logger), nil
	case config.StrategyGenerative:
		if !cfg.GenerativeEnabled() {
			return nil, services.Wrap(services.ErrConfiguration, "recommend", "build", "generative strategy requires llm.api_key", nil)
		}
		model := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			Temperature:    cfg.LLM.Temperature,
		}, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts))

		var posters PosterSearcher
		if cfg.TMDB.APIKey != "" {
			client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
				tmdb.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second}),
				tmdb.WithRegion(cfg.TMDB.Region),
			)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "recommend", "build", "tmdb client", err)
			}
			posters = client
		}
		return Instrument(NewGenerativeRecommender(model, posters, GenerativeOptions{
			BlockbusterPopularity: cfg.Recommend.BlockbusterPopularity,
			FreshnessDays:         cfg.Recommend.FreshnessDays,
			PosterTimeout:         cfg.PosterTimeout(),
		}, logger), logger), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "recommend", "build", "unknown strategy "+cfg.Recommend.Strategy, nil)
	}
}
