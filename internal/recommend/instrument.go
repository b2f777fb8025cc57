package recommend

import (
	"context"
	"log/slog"
	"time"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/metrics"
	"goodwatch/internal/services"
)

type instrumented struct {
	next   Recommender
	logger *slog.Logger
}

// Instrument wraps r with metrics and outcome logging.
func Instrument(r Recommender, logger *slog.Logger) Recommender {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &instrumented{next: r, logger: logging.NewComponentLogger(logger, "recommend")}
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Recommend(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	res, err := i.next.Recommend(ctx, req)
	kind := services.Kind(err)
	metrics.RecordRecommendation(i.next.Name(), kind, len(res.Movies), time.Since(start))
	logger := logging.WithContext(ctx, i.logger)
	if err != nil {
		logging.WarnWithContext(logger, "recommendation failed", "recommendation_failed",
			logging.String("strategy", i.next.Name()),
			logging.String("error_kind", kind),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "retry shortly or switch recommend.strategy to catalog"),
		)
		return res, err
	}
	logger.InfoContext(ctx, "recommendation served",
		logging.String(logging.FieldEventType, "recommendation_served"),
		logging.String("strategy", i.next.Name()),
		logging.String("language", req.Language.Name),
		logging.String("era", req.Era.Label),
		logging.Int("movies", len(res.Movies)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (i *instrumented) Replacements(ctx context.Context, req ReplacementRequest) ([]catalog.Movie, error) {
	start := time.Now()
	movies, err := i.next.Replacements(ctx, req)
	metrics.RecordRecommendation(i.next.Name()+"_replacement", services.Kind(err), len(movies), time.Since(start))
	return movies, err
}
