package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/metrics"
	"goodwatch/internal/services"
)

// NoAlternativesMessage is shown when a watched pick cannot be replaced.
const NoAlternativesMessage = "No more alternatives available"

var (
	// ErrNoAlternatives reports an empty pool whose synchronous fetch timed
	// out or came back empty. The displayed set is unchanged.
	ErrNoAlternatives = errors.New("no more alternatives available")
	// ErrInvalidIndex reports a watched index outside the displayed set.
	ErrInvalidIndex = errors.New("displayed index out of range")
)

// State is the pool's position in the refill cycle.
type State string

const (
	StateServing   State = "serving"
	StateToppingUp State = "topping_up"
	StateFetching  State = "fetching"
)

// Fetcher supplies replacement picks that avoid everything in exclude.
type Fetcher interface {
	Fetch(ctx context.Context, count int, exclude *catalog.Exclusions) ([]catalog.Movie, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, count int, exclude *catalog.Exclusions) ([]catalog.Movie, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, count int, exclude *catalog.Exclusions) ([]catalog.Movie, error) {
	return f(ctx, count, exclude)
}

// HistoryRecorder persists watched marks.
type HistoryRecorder interface {
	RecordWatched(ctx context.Context, sessionID, title string, year int) (int64, error)
}

// Options tunes a Pool.
type Options struct {
	SessionID      string
	LowWater       int
	Target         int
	FetchTimeout   time.Duration
	TopUpTimeout   time.Duration
	HistoryTimeout time.Duration
	Logger         *slog.Logger
}

func (o *Options) applyDefaults() {
	if o.Target <= 0 {
		o.Target = 6
	}
	if o.LowWater < 0 || o.LowWater >= o.Target {
		o.LowWater = 2
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 3 * time.Second
	}
	if o.TopUpTimeout <= 0 {
		o.TopUpTimeout = 30 * time.Second
	}
	if o.HistoryTimeout <= 0 {
		o.HistoryTimeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
}

// Swap describes the outcome of one watched action.
type Swap struct {
	Watched     catalog.Movie
	Replacement *catalog.Movie
	Source      string
	Displayed   []catalog.Movie
	PoolSize    int
	State       State
}

// Pool is the replacement buffer for one results view.
type Pool struct {
	fetcher Fetcher
	history HistoryRecorder
	opts    Options
	logger  *slog.Logger

	mu            sync.Mutex
	displayed     []catalog.Movie
	backups       []catalog.Movie
	seen          *catalog.Exclusions
	topUpInFlight bool
	wg            sync.WaitGroup
}

// New seeds a pool from a recommendation result. exclude carries titles the
// session has already watched; everything displayed or queued is added to it.
func New(displayed, backups []catalog.Movie, exclude *catalog.Exclusions, fetcher Fetcher, history HistoryRecorder, opts Options) *Pool {
	opts.applyDefaults()
	seen := catalog.NewExclusions()
	seen.Merge(exclude)
	for _, m := range displayed {
		seen.AddMovie(m)
	}
	for _, m := range backups {
		seen.AddMovie(m)
	}
	return &Pool{
		fetcher:   fetcher,
		history:   history,
		opts:      opts,
		logger:    logging.NewComponentLogger(opts.Logger, "pool"),
		displayed: append([]catalog.Movie(nil), displayed...),
		backups:   append([]catalog.Movie(nil), backups...),
		seen:      seen,
	}
}

// Displayed returns a copy of the picks currently shown.
func (p *Pool) Displayed() []catalog.Movie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]catalog.Movie(nil), p.displayed...)
}

// Size reports how many backups remain.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.backups)
}

// State reports the current refill state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Pool) stateLocked() State {
	switch {
	case len(p.backups) == 0:
		return StateFetching
	case p.topUpInFlight:
		return StateToppingUp
	default:
		return StateServing
	}
}

// MarkWatched records the displayed pick at index as watched and swaps in a
// replacement. With backups left the swap is immediate; with none it blocks on
// a single fetch for at most the fetch timeout and returns ErrNoAlternatives
// when nothing arrives.
func (p *Pool) MarkWatched(ctx context.Context, index int) (Swap, error) {
	p.mu.Lock()
	if index < 0 || index >= len(p.displayed) {
		p.mu.Unlock()
		return Swap{}, services.Wrap(services.ErrValidation, "pool", "mark watched", "", ErrInvalidIndex)
	}
	watched := p.displayed[index]
	p.recordHistory(ctx, watched)

	if len(p.backups) > 0 {
		replacement := p.backups[0]
		p.backups = p.backups[1:]
		p.displayed[index] = replacement
		p.maybeTopUpLocked(ctx)
		swap := p.swapLocked(watched, &replacement, "pool")
		p.mu.Unlock()
		metrics.PoolSwaps.WithLabelValues("pool").Inc()
		return swap, nil
	}

	exclude := p.snapshotLocked()
	p.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	movies, err := p.fetcher.Fetch(fetchCtx, 1, exclude)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	replacement, ok := p.firstUnseenLocked(movies)
	if err != nil || !ok {
		if err != nil {
			p.logger.InfoContext(ctx, "synchronous replacement fetch failed",
				logging.String("error_kind", services.Kind(err)),
				logging.Error(err),
			)
		}
		p.maybeTopUpLocked(ctx)
		metrics.PoolSwaps.WithLabelValues("none").Inc()
		return p.swapLocked(watched, nil, "none"), ErrNoAlternatives
	}
	if index < len(p.displayed) && p.displayed[index].Key() == watched.Key() {
		p.displayed[index] = replacement
	} else {
		p.backups = append([]catalog.Movie{replacement}, p.backups...)
	}
	p.maybeTopUpLocked(ctx)
	metrics.PoolSwaps.WithLabelValues("fetch").Inc()
	return p.swapLocked(watched, &replacement, "fetch"), nil
}

// Wait blocks until background refills and history writes finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) swapLocked(watched catalog.Movie, replacement *catalog.Movie, source string) Swap {
	return Swap{
		Watched:     watched,
		Replacement: replacement,
		Source:      source,
		Displayed:   append([]catalog.Movie(nil), p.displayed...),
		PoolSize:    len(p.backups),
		State:       p.stateLocked(),
	}
}

func (p *Pool) snapshotLocked() *catalog.Exclusions {
	exclude := catalog.NewExclusions()
	exclude.Merge(p.seen)
	return exclude
}

func (p *Pool) firstUnseenLocked(movies []catalog.Movie) (catalog.Movie, bool) {
	for _, m := range movies {
		if p.seen.Excludes(m) {
			continue
		}
		p.seen.AddMovie(m)
		return m, true
	}
	return catalog.Movie{}, false
}

// maybeTopUpLocked starts a background refill when the pool is at or below the
// low-water mark and none is running.
func (p *Pool) maybeTopUpLocked(ctx context.Context) {
	if p.topUpInFlight || len(p.backups) > p.opts.LowWater {
		return
	}
	need := p.opts.Target - len(p.backups)
	if need <= 0 {
		return
	}
	p.topUpInFlight = true
	exclude := p.snapshotLocked()
	bg := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go p.topUp(bg, need, exclude)
}

func (p *Pool) topUp(ctx context.Context, need int, exclude *catalog.Exclusions) {
	defer p.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, p.opts.TopUpTimeout)
	defer cancel()

	movies, err := p.fetcher.Fetch(ctx, need, exclude)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.topUpInFlight = false
	if err != nil {
		metrics.PoolTopUps.WithLabelValues(services.Kind(err)).Inc()
		p.logger.InfoContext(ctx, "pool top-up failed",
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return
	}
	added := 0
	for _, m := range movies {
		if len(p.backups) >= p.opts.Target {
			break
		}
		if p.seen.Excludes(m) {
			continue
		}
		p.seen.AddMovie(m)
		p.backups = append(p.backups, m)
		added++
	}
	metrics.PoolTopUps.WithLabelValues("ok").Inc()
	p.logger.DebugContext(ctx, "pool topped up",
		logging.Int("requested", need),
		logging.Int("added", added),
		logging.Int("pool_size", len(p.backups)),
	)
}

func (p *Pool) recordHistory(ctx context.Context, watched catalog.Movie) {
	if p.history == nil || p.opts.SessionID == "" {
		return
	}
	bg := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		writeCtx, cancel := context.WithTimeout(bg, p.opts.HistoryTimeout)
		defer cancel()
		if _, err := p.history.RecordWatched(writeCtx, p.opts.SessionID, watched.Title, watched.Year); err != nil {
			metrics.HistoryWriteFailures.Inc()
			logging.WarnWithContext(logging.WithContext(bg, p.logger), "watched history write failed", "history_write_failed",
				logging.String("title", watched.Title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the database path and disk space"),
				logging.String(logging.FieldImpact, "title may be recommended again in this session"),
			)
		}
	}()
}
