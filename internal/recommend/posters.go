package recommend

import (
	"context"
	"sync"
	"time"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/metrics"
	"goodwatch/internal/services"
	"goodwatch/internal/services/tmdb"
)

// PosterSearcher finds TMDB matches for a title and year.
type PosterSearcher interface {
	SearchMovie(ctx context.Context, query string, opts tmdb.SearchOptions) (*tmdb.Page, error)
}

type posterLookup struct {
	match *tmdb.Movie
	err   error
}

// attachPosters looks every movie up concurrently. A failed lookup leaves the
// poster nil; a match released inside the freshness window drops the movie.
func (g *GenerativeRecommender) attachPosters(ctx context.Context, movies []catalog.Movie, now time.Time) []catalog.Movie {
	if g.posters == nil || len(movies) == 0 {
		return movies
	}

	lookups := make([]posterLookup, len(movies))
	var wg sync.WaitGroup
	for i := range movies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, g.opts.PosterTimeout)
			defer cancel()
			lookups[i].match, lookups[i].err = g.searchPoster(lookupCtx, movies[i])
		}(i)
	}
	wg.Wait()

	cutoff := now.AddDate(0, 0, -g.opts.FreshnessDays).Format("2006-01-02")
	out := make([]catalog.Movie, 0, len(movies))
	for i, movie := range movies {
		lookup := lookups[i]
		switch {
		case lookup.err != nil:
			metrics.PosterLookups.WithLabelValues("error").Inc()
			g.logger.DebugContext(ctx, "poster lookup failed",
				logging.String("title", movie.Title),
				logging.Error(services.Wrap(services.ErrEnrichment, "recommend", "poster lookup", movie.Title, lookup.err)),
			)
		case lookup.match == nil:
			metrics.PosterLookups.WithLabelValues("miss").Inc()
		default:
			metrics.PosterLookups.WithLabelValues("hit").Inc()
			match := lookup.match
			if match.ReleaseDate != "" && match.ReleaseDate > cutoff {
				metrics.SanitizedMovies.WithLabelValues("too_recent").Inc()
				continue
			}
			movie.ID = match.ID
			movie.Popularity = match.Popularity
			movie.ReleaseDate = match.ReleaseDate
			movie.Overview = match.Overview
			if match.PosterPath != "" {
				path := match.PosterPath
				movie.PosterPath = &path
			}
		}
		out = append(out, movie)
	}
	return out
}

func (g *GenerativeRecommender) searchPoster(ctx context.Context, movie catalog.Movie) (*tmdb.Movie, error) {
	page, err := g.posters.SearchMovie(ctx, movie.Title, tmdb.SearchOptions{Year: movie.Year})
	if err != nil {
		return nil, err
	}
	if page == nil || len(page.Results) == 0 {
		return nil, nil
	}
	want := catalog.NormalizeTitle(movie.Title)
	for i := range page.Results {
		if catalog.NormalizeTitle(page.Results[i].Title) == want {
			return &page.Results[i], nil
		}
	}
	return &page.Results[0], nil
}
