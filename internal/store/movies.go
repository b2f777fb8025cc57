package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"goodwatch/internal/catalog"
	"goodwatch/internal/services"
)

const movieColumns = `id, imdb_id, title, original_title, release_date, year, language_code,
    genres, directors, cast_names, overview, tagline, keywords, mood_tags,
    popularity, vote_average, vote_count, runtime, poster_path, providers,
    collection_id, collection_name`

// MovieQuery filters catalog rows for a recommendation request.
type MovieQuery struct {
	LanguageCode string
	Era          catalog.Era
	// MoodTags, when non-empty, keeps only rows sharing at least one tag.
	MoodTags []string
	Exclude  *catalog.Exclusions
	Limit    int
}

// Stats summarizes catalog coverage.
type Stats struct {
	Movies     int            `json:"movies"`
	Tagged     int            `json:"tagged"`
	Untagged   int            `json:"untagged"`
	ByLanguage map[string]int `json:"by_language"`
}

// UpsertMovie inserts or refreshes a catalog row keyed by TMDB id. Existing
// mood tags survive when m.MoodTags is nil.
func (s *Store) UpsertMovie(ctx context.Context, m catalog.Movie) error {
	if m.ID <= 0 {
		return services.Wrap(services.ErrValidation, "store", "upsert movie", "tmdb id must be positive", nil)
	}
	if strings.TrimSpace(m.Title) == "" {
		return services.Wrap(services.ErrValidation, "store", "upsert movie", "title must not be empty", nil)
	}
	year := m.Year
	if year == 0 {
		year = catalog.YearFromDate(m.ReleaseDate)
	}
	var moodTags any
	if m.MoodTags != nil {
		moodTags = encodeList(m.MoodTags)
	}
	var posterPath any
	if m.PosterPath != nil {
		posterPath = nullableString(*m.PosterPath)
	}
	now := s.timestamp()
	_, err := s.execWithRetry(ctx, `INSERT INTO movies (`+movieColumns+`, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            imdb_id = excluded.imdb_id,
            title = excluded.title,
            original_title = excluded.original_title,
            release_date = excluded.release_date,
            year = excluded.year,
            language_code = excluded.language_code,
            genres = excluded.genres,
            directors = excluded.directors,
            cast_names = excluded.cast_names,
            overview = excluded.overview,
            tagline = excluded.tagline,
            keywords = excluded.keywords,
            mood_tags = COALESCE(excluded.mood_tags, movies.mood_tags),
            popularity = excluded.popularity,
            vote_average = excluded.vote_average,
            vote_count = excluded.vote_count,
            runtime = excluded.runtime,
            poster_path = excluded.poster_path,
            providers = excluded.providers,
            collection_id = excluded.collection_id,
            collection_name = excluded.collection_name,
            updated_at = excluded.updated_at`,
		m.ID,
		nullableString(m.IMDbID),
		strings.TrimSpace(m.Title),
		nullableString(m.OriginalTitle),
		nullableString(m.ReleaseDate),
		nullableInt(int64(year)),
		strings.ToLower(m.LanguageCode),
		encodeList(m.Genres),
		encodeList(m.Directors),
		encodeList(m.Cast),
		nullableString(m.Overview),
		nullableString(m.Tagline),
		encodeList(m.Keywords),
		moodTags,
		m.Popularity,
		m.VoteAverage,
		m.VoteCount,
		nullableInt(int64(m.RuntimeMinutes)),
		posterPath,
		encodeList(m.Providers),
		nullableInt(m.CollectionID),
		nullableString(m.CollectionName),
		now,
		now,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "upsert movie", fmt.Sprintf("tmdb id %d", m.ID), err)
	}
	return nil
}

// GetMovie fetches one catalog row by TMDB id.
func (s *Store) GetMovie(ctx context.Context, id int64) (*catalog.Movie, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get movie", fmt.Sprintf("tmdb id %d", id), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "get movie", "", err)
	}
	return &movie, nil
}

// QueryMovies returns catalog rows matching q, most popular first. Excluded
// rows are skipped while streaming so Limit counts only usable movies.
func (s *Store) QueryMovies(ctx context.Context, q MovieQuery) ([]catalog.Movie, error) {
	var (
		clauses []string
		args    []any
	)
	if q.LanguageCode != "" {
		clauses = append(clauses, "language_code = ?")
		args = append(args, strings.ToLower(q.LanguageCode))
	}
	if q.Era.From != "" || q.Era.To != "" {
		clauses = append(clauses, "release_date IS NOT NULL AND release_date != ''")
	}
	if q.Era.From != "" {
		clauses = append(clauses, "release_date >= ?")
		args = append(args, q.Era.From)
	}
	if q.Era.To != "" {
		clauses = append(clauses, "release_date <= ?")
		args = append(args, q.Era.To)
	}
	if len(q.MoodTags) > 0 {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(movies.mood_tags) WHERE json_each.value IN ("+makePlaceholders(len(q.MoodTags))+"))")
		for _, tag := range q.MoodTags {
			args = append(args, tag)
		}
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY popularity DESC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "query movies", "", err)
	}
	defer rows.Close()

	var movies []catalog.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "query movies", "scan row", err)
		}
		if q.Exclude.Excludes(movie) {
			continue
		}
		movies = append(movies, movie)
		if q.Limit > 0 && len(movies) >= q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "query movies", "iterate rows", err)
	}
	return movies, nil
}

// MoviesMissingMoodTags lists rows that have never been tagged, most popular
// first.
func (s *Store) MoviesMissingMoodTags(ctx context.Context, limit, offset int) ([]catalog.Movie, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE mood_tags IS NULL ORDER BY popularity DESC, id ASC LIMIT ? OFFSET ?`,
		limit, max(offset, 0),
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "store", "pending enrichment", "", err)
	}
	defer rows.Close()

	var movies []catalog.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrPersistence, "store", "pending enrichment", "scan row", err)
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// SetMoodTags stores derived tags, and refreshed keywords when non-nil.
func (s *Store) SetMoodTags(ctx context.Context, id int64, keywords, tags []string) error {
	now := s.timestamp()
	var (
		res sql.Result
		err error
	)
	if keywords != nil {
		res, err = s.execWithRetry(ctx,
			`UPDATE movies SET mood_tags = ?, keywords = ?, updated_at = ? WHERE id = ?`,
			encodeList(tags), encodeList(keywords), now, id)
	} else {
		res, err = s.execWithRetry(ctx,
			`UPDATE movies SET mood_tags = ?, updated_at = ? WHERE id = ?`,
			encodeList(tags), now, id)
	}
	if err != nil {
		return services.Wrap(services.ErrPersistence, "store", "set mood tags", fmt.Sprintf("tmdb id %d", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return services.Wrap(services.ErrNotFound, "store", "set mood tags", fmt.Sprintf("tmdb id %d", id), nil)
	}
	return nil
}

// CountMovies reports the number of catalog rows.
func (s *Store) CountMovies(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrPersistence, "store", "count movies", "", err)
	}
	return count, nil
}

// Stats reports catalog size, tagging progress and per-language counts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByLanguage: map[string]int{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN mood_tags IS NOT NULL THEN 1 ELSE 0 END), 0) FROM movies`,
	).Scan(&stats.Movies, &stats.Tagged)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrPersistence, "store", "stats", "", err)
	}
	stats.Untagged = stats.Movies - stats.Tagged

	rows, err := s.db.QueryContext(ctx, `SELECT language_code, COUNT(*) FROM movies GROUP BY language_code`)
	if err != nil {
		return Stats{}, services.Wrap(services.ErrPersistence, "store", "stats", "by language", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			code  string
			count int
		)
		if err := rows.Scan(&code, &count); err != nil {
			return Stats{}, services.Wrap(services.ErrPersistence, "store", "stats", "scan language", err)
		}
		stats.ByLanguage[code] = count
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (catalog.Movie, error) {
	var (
		movie          catalog.Movie
		imdbID         sql.NullString
		originalTitle  sql.NullString
		releaseDate    sql.NullString
		year           sql.NullInt64
		genres         sql.NullString
		directors      sql.NullString
		cast           sql.NullString
		overview       sql.NullString
		tagline        sql.NullString
		keywords       sql.NullString
		moodTags       sql.NullString
		runtime        sql.NullInt64
		posterPath     sql.NullString
		providers      sql.NullString
		collectionID   sql.NullInt64
		collectionName sql.NullString
	)
	err := row.Scan(
		&movie.ID,
		&imdbID,
		&movie.Title,
		&originalTitle,
		&releaseDate,
		&year,
		&movie.LanguageCode,
		&genres,
		&directors,
		&cast,
		&overview,
		&tagline,
		&keywords,
		&moodTags,
		&movie.Popularity,
		&movie.VoteAverage,
		&movie.VoteCount,
		&runtime,
		&posterPath,
		&providers,
		&collectionID,
		&collectionName,
	)
	if err != nil {
		return catalog.Movie{}, err
	}
	movie.IMDbID = imdbID.String
	movie.OriginalTitle = originalTitle.String
	movie.ReleaseDate = releaseDate.String
	movie.Year = int(year.Int64)
	if lang, ok := catalog.LanguageForCode(movie.LanguageCode); ok {
		movie.Language = lang.Name
	}
	movie.Genres = decodeList(genres)
	movie.Directors = decodeList(directors)
	if len(movie.Directors) > 0 {
		movie.Director = movie.Directors[0]
	}
	movie.Cast = decodeList(cast)
	movie.Overview = overview.String
	movie.Tagline = tagline.String
	movie.Keywords = decodeList(keywords)
	if moodTags.Valid {
		movie.MoodTags = decodeList(moodTags)
		if movie.MoodTags == nil {
			movie.MoodTags = []string{}
		}
	}
	movie.RuntimeMinutes = int(runtime.Int64)
	movie.Runtime = catalog.FormatRuntime(movie.RuntimeMinutes)
	if posterPath.Valid && posterPath.String != "" {
		path := posterPath.String
		movie.PosterPath = &path
	}
	movie.Providers = decodeList(providers)
	movie.CollectionID = collectionID.Int64
	movie.CollectionName = collectionName.String
	return movie, nil
}
