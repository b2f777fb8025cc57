package recommend

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/services"
	"goodwatch/internal/services/llm"
)

// Completer sends one system and one user message and returns the JSON reply.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerativeOptions tunes GenerativeRecommender.
type GenerativeOptions struct {
	BlockbusterPopularity float64
	FreshnessDays         int
	PosterTimeout         time.Duration
	Now                   func() time.Time
}

// GenerativeRecommender asks a chat model for picks and verifies them.
type GenerativeRecommender struct {
	model   Completer
	posters PosterSearcher
	breaker *gobreaker.CircuitBreaker[string]
	opts    GenerativeOptions
	logger  *slog.Logger
}

// NewGenerativeRecommender builds the generative strategy. posters may be nil,
// in which case every poster_path stays null.
func NewGenerativeRecommender(model Completer, posters PosterSearcher, opts GenerativeOptions, logger *slog.Logger) *GenerativeRecommender {
	if opts.PosterTimeout <= 0 {
		opts.PosterTimeout = 3 * time.Second
	}
	if opts.FreshnessDays <= 0 {
		opts.FreshnessDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "recommend.generative")
	return &GenerativeRecommender{
		model:   model,
		posters: posters,
		breaker: newModelBreaker(logger),
		opts:    opts,
		logger:  logger,
	}
}

// Name implements Recommender.
func (g *GenerativeRecommender) Name() string { return "generative" }

// Recommend implements Recommender.
func (g *GenerativeRecommender) Recommend(ctx context.Context, req Request) (Result, error) {
	now := g.opts.Now()
	content, err := g.complete(ctx, "recommend", recommendationPrompt(req, g.opts.FreshnessDays, now), recommendationUserPrompt(req))
	if err != nil {
		return Result{}, err
	}
	picks, err := decodePicks(content)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "recommend", "decode model output", "", err)
	}
	movies := sanitize(picks, req.Language, req.Era, req.Exclusions, g.logger)
	movies = g.attachPosters(ctx, movies, now)
	movies = arrange(movies, g.opts.BlockbusterPopularity, ResultSize)
	g.logger.DebugContext(ctx, "generative recommendation",
		logging.Int("model_picks", len(picks)),
		logging.Int("returned", len(movies)),
	)
	return Result{Movies: movies, Strategy: g.Name()}, nil
}

// Replacements implements Recommender.
func (g *GenerativeRecommender) Replacements(ctx context.Context, req ReplacementRequest) ([]catalog.Movie, error) {
	now := g.opts.Now()
	content, err := g.complete(ctx, "replacements", replacementPrompt(req, g.opts.FreshnessDays, now), replacementUserPrompt(req))
	if err != nil {
		return nil, err
	}
	picks, err := decodePicks(content)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "recommend", "decode model output", "", err)
	}
	movies := sanitize(picks, req.Language, req.Era, req.Exclusions, g.logger)
	movies = g.attachPosters(ctx, movies, now)
	return movies[:min(req.Count, len(movies))], nil
}

func (g *GenerativeRecommender) complete(ctx context.Context, op, system, user string) (string, error) {
	content, err := g.breaker.Execute(func() (string, error) {
		return g.model.CompleteJSON(ctx, system, user)
	})
	if err == nil {
		return content, nil
	}
	switch {
	case breakerRejected(err):
		return "", services.Wrap(services.ErrUnavailable, "recommend", op, "model circuit open", err)
	case llm.IsRateLimited(err):
		return "", services.Wrap(services.ErrRateLimited, "recommend", op, "model rate limited", err)
	case llm.IsUnavailable(err):
		return "", services.Wrap(services.ErrUnavailable, "recommend", op, "model unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return "", services.Wrap(services.ErrTimeout, "recommend", op, "model call timed out", err)
	case errors.Is(err, context.Canceled):
		return "", err
	default:
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			return "", services.Wrap(services.ErrTransient, "recommend", op, "model request rejected", err)
		}
		return "", services.Wrap(services.ErrUnavailable, "recommend", op, "model request failed", err)
	}
}

func trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
