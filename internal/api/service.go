package api

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/pool"
	"goodwatch/internal/recommend"
	"goodwatch/internal/services"
	"goodwatch/internal/store"
)

const maxFeedbackLimit = 500

// Store is the persistence surface Service needs.
type Store interface {
	WatchedExclusions(ctx context.Context, sessionID string) (*catalog.Exclusions, error)
	RecordWatched(ctx context.Context, sessionID, title string, year int) (int64, error)
	ListWatched(ctx context.Context, sessionID string) ([]store.WatchedEntry, error)
	RecordFeedback(ctx context.Context, fb store.Feedback) (int64, error)
	ListFeedback(ctx context.Context, limit int) ([]store.Feedback, error)
	Ping(ctx context.Context) error
}

// ServiceOptions tunes replacement behaviour.
type ServiceOptions struct {
	ReplacementTimeout time.Duration
	PoolLowWater       int
	PoolTarget         int
}

// Service implements the HTTP operations independent of routing.
type Service struct {
	recommender recommend.Recommender
	store       Store
	views       *pool.Registry
	opts        ServiceOptions
	logger      *slog.Logger
}

// NewService wires a Service.
func NewService(rec recommend.Recommender, st Store, views *pool.Registry, opts ServiceOptions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.ReplacementTimeout <= 0 {
		opts.ReplacementTimeout = 3 * time.Second
	}
	if views == nil {
		views = pool.NewRegistry(0)
	}
	return &Service{
		recommender: rec,
		store:       st,
		views:       views,
		opts:        opts,
		logger:      logging.NewComponentLogger(logger, "api"),
	}
}

// Strategy names the configured recommender.
func (s *Service) Strategy() string {
	return s.recommender.Name()
}

// Recommend validates req, excludes the session's watched titles and opens a
// results view whose pool holds the backup picks.
func (s *Service) Recommend(ctx context.Context, req RecommendationRequest) (RecommendationResponse, error) {
	if err := validateStruct(req); err != nil {
		return RecommendationResponse{}, err
	}
	r, err := recommend.NewRequest(recommend.RequestInput{
		Mood:       req.Mood,
		Language:   req.Language,
		Era:        req.Era,
		AgeBracket: req.Age,
		Gender:     req.Gender,
		Genres:     req.Genres,
		SessionID:  req.SessionID,
	})
	if err != nil {
		return RecommendationResponse{}, err
	}
	ctx = services.WithSessionID(ctx, r.SessionID)
	r.Exclusions.Merge(s.watchedExclusions(ctx, r.SessionID))

	res, err := s.recommender.Recommend(ctx, r)
	if err != nil {
		return RecommendationResponse{}, err
	}

	p := pool.New(res.Displayed(), res.Backup(), r.Exclusions, s.fetcherFor(r), s.store, pool.Options{
		SessionID:    r.SessionID,
		LowWater:     s.opts.PoolLowWater,
		Target:       s.opts.PoolTarget,
		FetchTimeout: s.opts.ReplacementTimeout,
		Logger:       s.logger,
	})
	viewID := s.views.Add(p)

	movies := res.Movies
	if movies == nil {
		movies = []catalog.Movie{}
	}
	return RecommendationResponse{Movies: movies, ViewID: viewID, Strategy: res.Strategy}, nil
}

func (s *Service) fetcherFor(r recommend.Request) pool.Fetcher {
	return pool.FetcherFunc(func(ctx context.Context, count int, exclude *catalog.Exclusions) ([]catalog.Movie, error) {
		return s.recommender.Replacements(ctx, recommend.ReplacementRequest{
			SessionID:  r.SessionID,
			Mood:       r.Mood,
			Language:   r.Language,
			Era:        r.Era,
			Genres:     r.Profile.Genres,
			Exclusions: exclude,
			Count:      count,
		})
	})
}

// Replacements serves a stateless replacement request. A timeout yields an
// empty list rather than an error.
func (s *Service) Replacements(ctx context.Context, req ReplacementsRequest) (ReplacementsResponse, error) {
	empty := ReplacementsResponse{Replacements: []catalog.Movie{}}
	if err := validateStruct(req); err != nil {
		return empty, err
	}
	r, err := recommend.NewReplacementRequest(recommend.ReplacementInput{
		SessionID:         req.SessionID,
		Mood:              req.Mood,
		PreferredLanguage: req.PreferredLanguage,
		Era:               req.Era,
		Genres:            req.Genres,
		WatchedTitles:     req.WatchedTitles,
		ExcludeIDs:        req.ExcludeIDs,
		Count:             req.Count,
	})
	if err != nil {
		return empty, err
	}
	ctx = services.WithSessionID(ctx, r.SessionID)
	r.Exclusions.Merge(s.watchedExclusions(ctx, r.SessionID))

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.ReplacementTimeout)
	defer cancel()
	movies, err := s.recommender.Replacements(fetchCtx, r)
	if err != nil {
		if errors.Is(err, services.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			s.logger.InfoContext(ctx, "replacement request timed out",
				logging.String(logging.FieldEventType, "replacement_timeout"),
				logging.Duration("timeout", s.opts.ReplacementTimeout),
			)
			return empty, nil
		}
		return empty, err
	}
	if len(movies) == 0 {
		return empty, nil
	}
	return ReplacementsResponse{Replacements: movies}, nil
}

// MarkViewWatched swaps the displayed pick at index in the view's pool. An
// exhausted pool is not an error for the client: the response carries the
// unchanged displayed set and a message.
func (s *Service) MarkViewWatched(ctx context.Context, viewID string, req ViewWatchedRequest) (SwapResponse, error) {
	if err := validateStruct(req); err != nil {
		return SwapResponse{}, err
	}
	p, ok := s.views.Get(viewID)
	if !ok {
		return SwapResponse{}, services.Wrap(services.ErrNotFound, "api", "mark watched", "view not found or expired", nil)
	}
	ctx = services.WithViewID(ctx, viewID)
	swap, err := p.MarkWatched(ctx, *req.Index)
	resp := SwapResponse{
		Watched:     swap.Watched,
		Replacement: swap.Replacement,
		Displayed:   swap.Displayed,
		PoolSize:    swap.PoolSize,
		State:       string(swap.State),
	}
	if errors.Is(err, pool.ErrNoAlternatives) {
		resp.Message = pool.NoAlternativesMessage
		return resp, nil
	}
	if err != nil {
		return SwapResponse{}, err
	}
	return resp, nil
}

// RecordWatched stores an explicit watched mark.
func (s *Service) RecordWatched(ctx context.Context, req WatchedRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	_, err := s.store.RecordWatched(ctx, req.SessionID, req.Title, req.Year)
	return err
}

// WatchedHistory lists a session's watched marks oldest first.
func (s *Service) WatchedHistory(ctx context.Context, sessionID string) (WatchedListResponse, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return WatchedListResponse{}, services.Wrap(services.ErrValidation, "api", "watched history", "session id is required", nil)
	}
	entries, err := s.store.ListWatched(ctx, sessionID)
	if err != nil {
		return WatchedListResponse{}, err
	}
	watched := make([]WatchedMovie, 0, len(entries))
	for _, e := range entries {
		watched = append(watched, WatchedMovie{Title: e.Title, Year: e.Year, CreatedAt: e.CreatedAt})
	}
	return WatchedListResponse{Watched: watched}, nil
}

// RecordFeedback stores a feedback row. Preset reasons must come from
// catalog.FeedbackReasons.
func (s *Service) RecordFeedback(ctx context.Context, req FeedbackRequest) (FeedbackCreatedResponse, error) {
	if err := validateStruct(req); err != nil {
		return FeedbackCreatedResponse{}, err
	}
	for _, reason := range req.Reasons {
		if !slices.Contains(catalog.FeedbackReasons, reason) {
			return FeedbackCreatedResponse{}, services.Wrap(services.ErrValidation, "api", "record feedback", "unknown reason "+reason, nil)
		}
	}
	id, err := s.store.RecordFeedback(ctx, store.Feedback{
		SessionID:       req.SessionID,
		Mood:            req.Mood,
		WasHelpful:      req.WasHelpful,
		Text:            FeedbackText(req.Reasons, req.FeedbackText),
		Recommendations: req.Recommendations,
	})
	if err != nil {
		return FeedbackCreatedResponse{}, err
	}
	return FeedbackCreatedResponse{ID: id}, nil
}

// FeedbackText joins preset reasons and free text as "a, b: text".
func FeedbackText(reasons []string, text string) string {
	text = strings.TrimSpace(text)
	if len(reasons) == 0 {
		return text
	}
	joined := strings.Join(reasons, ", ")
	if text == "" {
		return joined
	}
	return joined + ": " + text
}

// ListFeedback returns the newest feedback rows.
func (s *Service) ListFeedback(ctx context.Context, limit int) (FeedbackListResponse, error) {
	limit = min(limit, maxFeedbackLimit)
	rows, err := s.store.ListFeedback(ctx, limit)
	if err != nil {
		return FeedbackListResponse{}, err
	}
	if rows == nil {
		rows = []store.Feedback{}
	}
	return FeedbackListResponse{Feedback: rows}, nil
}

// Health pings the store and reports open views.
func (s *Service) Health(ctx context.Context) (HealthResponse, error) {
	if err := s.store.Ping(ctx); err != nil {
		return HealthResponse{Status: "degraded", Strategy: s.Strategy(), Views: s.views.Len()}, err
	}
	return HealthResponse{Status: "ok", Strategy: s.Strategy(), Views: s.views.Len()}, nil
}

// watchedExclusions loads the session's history. Failures are logged and the
// request proceeds without them.
func (s *Service) watchedExclusions(ctx context.Context, sessionID string) *catalog.Exclusions {
	if sessionID == "" {
		return nil
	}
	excl, err := s.store.WatchedExclusions(ctx, sessionID)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "watched history unavailable", "history_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the database path and permissions"),
			logging.String(logging.FieldImpact, "previously watched titles may be recommended"),
		)
		return nil
	}
	return excl
}
