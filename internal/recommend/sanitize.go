package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/metrics"
	"goodwatch/internal/services/llm"
)

// modelPick is one movie as the model describes it.
type modelPick struct {
	Title            string    `json:"title"`
	Year             flexYear  `json:"year"`
	Language         string    `json:"language"`
	Why              string    `json:"why"`
	WhereToWatch     string    `json:"where_to_watch"`
	Runtime          string    `json:"runtime"`
	Genres           flexGenre `json:"genres"`
	Director         string    `json:"director"`
	LanguageFallback bool      `json:"language_fallback"`
}

// flexYear accepts 2015, "2015" and "2015-05-08".
type flexYear int

func (y *flexYear) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*y = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if year := catalog.YearFromDate(raw); year > 0 {
		*y = flexYear(year)
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*y = 0
		return nil
	}
	*y = flexYear(int(n))
	return nil
}

// flexGenre accepts a list or a comma separated string.
type flexGenre []string

func (g *flexGenre) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*g = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		*g = nil
		return nil
	}
	*g = strings.Split(single, ",")
	return nil
}

// decodePicks reads {"movies": [...]}, {"replacements": [...]}, a bare array
// or a single movie object.
func decodePicks(content string) ([]modelPick, error) {
	var wrapped struct {
		Movies       []modelPick `json:"movies"`
		Replacements []modelPick `json:"replacements"`
		Title        string      `json:"title"`
	}
	objErr := llm.DecodeJSON(content, &wrapped)
	if objErr == nil {
		switch {
		case len(wrapped.Movies) > 0:
			return wrapped.Movies, nil
		case len(wrapped.Replacements) > 0:
			return wrapped.Replacements, nil
		case wrapped.Title != "":
			var single modelPick
			if err := llm.DecodeJSON(content, &single); err == nil {
				return []modelPick{single}, nil
			}
		}
		return nil, nil
	}
	var list []modelPick
	if err := llm.DecodeJSON(content, &list); err == nil {
		return list, nil
	}
	return nil, errors.Join(errors.New("model output is not a movie list"), objErr)
}

// sanitize converts model picks into movies, dropping anything that breaks
// the request's hard constraints.
func sanitize(picks []modelPick, lang catalog.Language, era catalog.Era, exclude *catalog.Exclusions, logger *slog.Logger) []catalog.Movie {
	seen := catalog.NewExclusions()
	out := make([]catalog.Movie, 0, len(picks))
	drop := func(reason string, pick modelPick) {
		metrics.SanitizedMovies.WithLabelValues(reason).Inc()
		logger.Debug("dropped model pick",
			logging.String("reason", reason),
			logging.String("title", pick.Title),
			logging.Int("year", int(pick.Year)),
		)
	}
	for _, pick := range picks {
		pick.Title = strings.TrimSpace(pick.Title)
		movie := catalog.Movie{Title: pick.Title, Year: int(pick.Year)}
		switch {
		case pick.Title == "":
			drop("blank_title", pick)
			continue
		case movie.Year <= 0:
			drop("unknown_year", pick)
			continue
		case !sameLanguage(pick.Language, lang):
			drop("language", pick)
			continue
		case era.Label != "" && !era.ContainsYear(movie.Year):
			drop("era", pick)
			continue
		case exclude.Excludes(movie):
			drop("excluded", pick)
			continue
		case seen.Excludes(movie):
			drop("duplicate", pick)
			continue
		}
		seen.AddMovie(movie)

		genres := make([]string, 0, len(pick.Genres))
		for _, g := range trimmed(pick.Genres) {
			genres = append(genres, catalog.NormalizeGenre(g))
		}
		movie.Language = lang.Name
		movie.LanguageCode = lang.Code
		movie.Genres = genres
		movie.Director = strings.TrimSpace(pick.Director)
		if movie.Director != "" {
			movie.Directors = []string{movie.Director}
		}
		movie.Why = strings.TrimSpace(pick.Why)
		movie.WhereToWatch = strings.TrimSpace(pick.WhereToWatch)
		movie.Runtime = strings.TrimSpace(pick.Runtime)
		out = append(out, movie)
	}
	return out
}

// sameLanguage treats an omitted language as the requested one.
func sameLanguage(reported string, want catalog.Language) bool {
	reported = strings.TrimSpace(reported)
	if reported == "" {
		return true
	}
	lang, ok := catalog.ParseLanguage(reported)
	return ok && lang.Code == want.Code
}
