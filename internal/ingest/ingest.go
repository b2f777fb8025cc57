package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/metrics"
	"goodwatch/internal/moodtag"
	"goodwatch/internal/services"
	"goodwatch/internal/services/tmdb"
	"goodwatch/internal/store"
)

// ErrBusy reports that another ingest run holds the lock.
var ErrBusy = errors.New("another catalog ingest is already running")

// Source is the TMDB surface ingest uses.
type Source interface {
	ListMovies(ctx context.Context, list string, page int) (*tmdb.Page, error)
	DiscoverMovies(ctx context.Context, opts tmdb.DiscoverOptions) (*tmdb.Page, error)
	GetMovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
	GetMovieKeywords(ctx context.Context, movieID int64) ([]string, error)
	Region() string
}

// Sink is the catalog surface ingest writes to.
type Sink interface {
	UpsertMovie(ctx context.Context, m catalog.Movie) error
	MoviesMissingMoodTags(ctx context.Context, limit, offset int) ([]catalog.Movie, error)
	SetMoodTags(ctx context.Context, id int64, keywords, tags []string) error
}

var _ Sink = (*store.Store)(nil)

// Endpoints accepted by Import.
var Endpoints = []string{"popular", "top_rated", "now_playing", "upcoming", "discover"}

// ImportOptions selects what to import.
type ImportOptions struct {
	Endpoint string
	Pages    int
	// LanguageCode and Era only apply to the discover endpoint.
	LanguageCode string
	Era          catalog.Era
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Pages    int
	Seen     int
	Imported int
	Failed   int
}

// EnrichOptions selects which untagged rows to process.
type EnrichOptions struct {
	Limit  int
	Offset int
}

// EnrichReport summarizes an enrichment run.
type EnrichReport struct {
	Processed       int
	Tagged          int
	KeywordFailures int
}

// Service runs catalog imports and enrichment.
type Service struct {
	source Source
	sink   Sink
	lock   *flock.Flock
	logger *slog.Logger
}

// NewService builds an ingest service locking dataDir/ingest.lock.
func NewService(source Source, sink Sink, dataDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		source: source,
		sink:   sink,
		lock:   flock.New(filepath.Join(dataDir, "ingest.lock")),
		logger: logging.NewComponentLogger(logger, "ingest"),
	}
}

func (s *Service) acquire() (func(), error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ingest lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release ingest lock", logging.Error(err))
		}
	}, nil
}

// Import fetches opts.Pages pages and upserts every movie on them. Single
// movie failures are logged and counted; page failures stop the run.
func (s *Service) Import(ctx context.Context, opts ImportOptions) (ImportReport, error) {
	var report ImportReport
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = "popular"
	}
	if !validEndpoint(endpoint) {
		return report, services.Wrap(services.ErrValidation, "ingest", "import", "unknown endpoint "+endpoint, nil)
	}
	pages := max(opts.Pages, 1)

	release, err := s.acquire()
	if err != nil {
		return report, err
	}
	defer release()

	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		listing, err := s.fetchPage(ctx, endpoint, page, opts)
		if err != nil {
			return report, services.Wrap(services.ErrUnavailable, "ingest", "import", fmt.Sprintf("%s page %d", endpoint, page), err)
		}
		report.Pages++
		for _, summary := range listing.Results {
			report.Seen++
			if err := s.importMovie(ctx, summary.ID); err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				report.Failed++
				s.logger.Warn("movie import failed",
					logging.Int64("tmdb_id", summary.ID),
					logging.String("title", summary.Title),
					logging.Error(err),
				)
				continue
			}
			report.Imported++
			metrics.CatalogImported.WithLabelValues("import").Inc()
		}
		s.logger.Info("imported page",
			logging.String("endpoint", endpoint),
			logging.Int("page", page),
			logging.Int("imported", report.Imported),
		)
		if listing.TotalPages > 0 && page >= listing.TotalPages {
			break
		}
	}
	return report, nil
}

func (s *Service) fetchPage(ctx context.Context, endpoint string, page int, opts ImportOptions) (*tmdb.Page, error) {
	if endpoint != "discover" {
		return s.source.ListMovies(ctx, endpoint, page)
	}
	return s.source.DiscoverMovies(ctx, tmdb.DiscoverOptions{
		Page:             page,
		OriginalLanguage: opts.LanguageCode,
		ReleasedFrom:     opts.Era.From,
		ReleasedTo:       opts.Era.To,
	})
}

func (s *Service) importMovie(ctx context.Context, id int64) error {
	details, err := s.source.GetMovieDetails(ctx, id)
	if err != nil {
		return err
	}
	return s.sink.UpsertMovie(ctx, MovieFromDetails(details, s.source.Region()))
}

// Enrich tags rows whose mood tags are NULL. Keywords are refreshed from TMDB;
// when that fails the stored keywords are used.
func (s *Service) Enrich(ctx context.Context, opts EnrichOptions) (EnrichReport, error) {
	var report EnrichReport
	release, err := s.acquire()
	if err != nil {
		return report, err
	}
	defer release()

	movies, err := s.sink.MoviesMissingMoodTags(ctx, opts.Limit, opts.Offset)
	if err != nil {
		return report, err
	}
	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		keywords := m.Keywords
		var refreshed []string
		if s.source != nil {
			kw, err := s.source.GetMovieKeywords(ctx, m.ID)
			if err != nil {
				report.KeywordFailures++
				s.logger.Debug("keyword refresh failed",
					logging.Int64("tmdb_id", m.ID),
					logging.Error(services.Wrap(services.ErrEnrichment, "ingest", "keywords", m.Title, err)),
				)
			} else {
				keywords, refreshed = kw, kw
			}
		}
		tags := moodtag.TagMovie(m.Overview, keywords).Sorted()
		if err := s.sink.SetMoodTags(ctx, m.ID, refreshed, tags); err != nil {
			return report, err
		}
		report.Processed++
		if len(tags) > 0 {
			report.Tagged++
		}
		metrics.CatalogImported.WithLabelValues("enrich").Inc()
	}
	s.logger.Info("enrichment finished",
		logging.Int("processed", report.Processed),
		logging.Int("tagged", report.Tagged),
		logging.Int("keyword_failures", report.KeywordFailures),
	)
	return report, nil
}

// MovieFromDetails converts a TMDB details payload into a tagged catalog row.
func MovieFromDetails(d *tmdb.MovieDetails, region string) catalog.Movie {
	keywords := d.KeywordNames()
	m := catalog.Movie{
		ID:             d.ID,
		IMDbID:         d.IMDbID,
		Title:          strings.TrimSpace(d.Title),
		OriginalTitle:  d.OriginalTitle,
		ReleaseDate:    d.ReleaseDate,
		Year:           catalog.YearFromDate(d.ReleaseDate),
		LanguageCode:   strings.ToLower(d.OriginalLanguage),
		Genres:         d.GenreNames(),
		Directors:      d.Directors(),
		Cast:           d.TopCast(10),
		Overview:       d.Overview,
		Tagline:        d.Tagline,
		Keywords:       keywords,
		MoodTags:       moodtag.TagMovie(d.Overview, keywords).Sorted(),
		Popularity:     d.Popularity,
		VoteAverage:    d.VoteAverage,
		VoteCount:      d.VoteCount,
		RuntimeMinutes: d.Runtime,
		Providers:      providerNames(d, region),
	}
	if lang, ok := catalog.LanguageForCode(m.LanguageCode); ok {
		m.Language = lang.Name
	}
	if d.PosterPath != "" {
		poster := d.PosterPath
		m.PosterPath = &poster
	}
	if d.BelongsToCollection != nil {
		m.CollectionID = d.BelongsToCollection.ID
		m.CollectionName = d.BelongsToCollection.Name
	}
	return m
}

func providerNames(d *tmdb.MovieDetails, region string) []string {
	listing, ok := d.WatchProviders.Results[strings.ToUpper(region)]
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	var names []string
	for _, group := range [][]tmdb.Provider{listing.Flatrate, listing.Rent, listing.Buy} {
		for _, p := range group {
			name := strings.TrimSpace(p.ProviderName)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func validEndpoint(endpoint string) bool {
	for _, e := range Endpoints {
		if e == endpoint {
			return true
		}
	}
	return false
}
