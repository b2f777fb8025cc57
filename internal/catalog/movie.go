package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Movie is a catalog entry or a recommendation. Catalog rows carry the TMDB
// identity and metadata; recommendations add the Why and WhereToWatch text
// written for the viewer.
type Movie struct {
	ID             int64    `json:"tmdb_id,omitempty"`
	IMDbID         string   `json:"imdb_id,omitempty"`
	Title          string   `json:"title"`
	OriginalTitle  string   `json:"original_title,omitempty"`
	Year           int      `json:"year"`
	ReleaseDate    string   `json:"release_date,omitempty"`
	Language       string   `json:"language"`
	LanguageCode   string   `json:"language_code,omitempty"`
	Genres         []string `json:"genres"`
	Director       string   `json:"director,omitempty"`
	Directors      []string `json:"-"`
	Cast           []string `json:"cast,omitempty"`
	Overview       string   `json:"overview,omitempty"`
	Tagline        string   `json:"-"`
	Keywords       []string `json:"-"`
	MoodTags       []string `json:"mood_tags,omitempty"`
	Popularity     float64  `json:"popularity,omitempty"`
	VoteAverage    float64  `json:"vote_average,omitempty"`
	VoteCount      int64    `json:"vote_count,omitempty"`
	RuntimeMinutes int      `json:"runtime_minutes,omitempty"`
	Runtime        string   `json:"runtime,omitempty"`
	PosterPath     *string  `json:"poster_path"`
	Providers      []string `json:"providers,omitempty"`
	WhereToWatch   string   `json:"where_to_watch,omitempty"`
	Why            string   `json:"why,omitempty"`
	CollectionID   int64    `json:"-"`
	CollectionName string   `json:"collection,omitempty"`
}

// PrimaryGenre is the first listed genre, lowercased for comparison.
func (m Movie) PrimaryGenre() string {
	if len(m.Genres) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m.Genres[0]))
}

// PrimaryDirector is the credited director, lowercased for comparison.
func (m Movie) PrimaryDirector() string {
	name := m.Director
	if name == "" && len(m.Directors) > 0 {
		name = m.Directors[0]
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Key identifies a movie by normalized title and year.
func (m Movie) Key() string {
	return TitleKey(m.Title, m.Year)
}

// TitleKey normalizes a title/year pair for duplicate and exclusion checks.
func TitleKey(title string, year int) string {
	return fmt.Sprintf("%s|%d", NormalizeTitle(title), year)
}

// NormalizeTitle lowercases and collapses whitespace and punctuation noise.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	lastSpace := false
	for _, r := range title {
		switch {
		case r == '\'' || r == '’' || r == '.' || r == ',' || r == '!' || r == '?' || r == ':':
			continue
		case r == ' ' || r == '-' || r == '\t':
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// FormatRuntime renders minutes as "2h 15m".
func FormatRuntime(minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes%60 == 0:
		return fmt.Sprintf("%dh", minutes/60)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}

// NormalizeGenre title-cases a free-typed genre ("sci-fi" -> "Sci-Fi").
func NormalizeGenre(genre string) string {
	genre = strings.Join(strings.Fields(genre), " ")
	if genre == "" {
		return ""
	}
	return cases.Title(language.English).String(genre)
}

// YearFromDate extracts the year from a YYYY-MM-DD date.
func YearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
