package recommend

import (
	"context"
	"strings"
	"unicode/utf8"

	"goodwatch/internal/catalog"
	"goodwatch/internal/services"
)

const (
	// DisplayedCount is how many picks a results view shows.
	DisplayedCount = 3
	// ResultSize is the full result: displayed picks plus backups.
	ResultSize = 6
	// MaxReplacements caps a single replacement request.
	MaxReplacements = ResultSize

	minMoodLength = 3
)

// Recommender is implemented by each recommendation strategy.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (Result, error)
	Replacements(ctx context.Context, req ReplacementRequest) ([]catalog.Movie, error)
	Name() string
}

// Request is a validated recommendation request.
type Request struct {
	Mood       string
	Language   catalog.Language
	Era        catalog.Era
	Profile    catalog.Profile
	SessionID  string
	Exclusions *catalog.Exclusions
}

// RequestInput is the unvalidated form accepted from clients.
type RequestInput struct {
	Mood       string
	Language   string
	Era        string
	AgeBracket string
	Gender     string
	Genres     []string
	SessionID  string
}

// NewRequest validates input. Language and era are mandatory.
func NewRequest(in RequestInput) (Request, error) {
	mood := strings.TrimSpace(in.Mood)
	if utf8.RuneCountInString(mood) < minMoodLength {
		return Request{}, validationError("mood must be at least 3 characters")
	}
	lang, ok := catalog.ParseLanguage(in.Language)
	if !ok {
		return Request{}, validationError("language must be one of " + strings.Join(catalog.LanguageNames(), ", "))
	}
	era, ok := catalog.ParseEra(in.Era)
	if !ok {
		return Request{}, validationError("era is required")
	}
	if !catalog.ValidAgeBracket(in.AgeBracket) {
		return Request{}, validationError("unknown age bracket " + in.AgeBracket)
	}
	if !catalog.ValidGender(in.Gender) {
		return Request{}, validationError("unknown gender " + in.Gender)
	}
	genres := cleanGenres(in.Genres)
	if len(genres) > catalog.MaxProfileGenres {
		return Request{}, validationError("at most 3 favourite genres")
	}
	return Request{
		Mood:     mood,
		Language: lang,
		Era:      era,
		Profile: catalog.Profile{
			AgeBracket: in.AgeBracket,
			Gender:     in.Gender,
			Genres:     genres,
			Language:   lang.Name,
		},
		SessionID:  strings.TrimSpace(in.SessionID),
		Exclusions: catalog.NewExclusions(),
	}, nil
}

// Result is an ordered recommendation list.
type Result struct {
	Movies   []catalog.Movie
	Strategy string
}

// Displayed returns the picks shown to the viewer.
func (r Result) Displayed() []catalog.Movie {
	return r.Movies[:min(DisplayedCount, len(r.Movies))]
}

// Backup returns the picks that seed the replacement pool.
func (r Result) Backup() []catalog.Movie {
	if len(r.Movies) <= DisplayedCount {
		return nil
	}
	return r.Movies[DisplayedCount:]
}

// ReplacementRequest asks for count picks similar to an existing view.
type ReplacementRequest struct {
	SessionID string
	Mood      string
	Language  catalog.Language
	// Era is optional; the zero value leaves release dates unconstrained.
	Era        catalog.Era
	Genres     []string
	Exclusions *catalog.Exclusions
	Count      int
}

// ReplacementInput is the unvalidated form accepted from clients.
type ReplacementInput struct {
	SessionID         string
	Mood              string
	PreferredLanguage string
	Era               string
	Genres            []string
	WatchedTitles     []string
	ExcludeIDs        []int64
	Count             int
}

// NewReplacementRequest validates input. Language defaults to English as the
// replacement endpoint has always done.
func NewReplacementRequest(in ReplacementInput) (ReplacementRequest, error) {
	mood := strings.TrimSpace(in.Mood)
	if mood == "" {
		return ReplacementRequest{}, validationError("mood is required")
	}
	langName := in.PreferredLanguage
	if strings.TrimSpace(langName) == "" {
		langName = "English"
	}
	lang, ok := catalog.ParseLanguage(langName)
	if !ok {
		return ReplacementRequest{}, validationError("unsupported language " + in.PreferredLanguage)
	}
	var era catalog.Era
	if strings.TrimSpace(in.Era) != "" {
		if era, ok = catalog.ParseEra(in.Era); !ok {
			return ReplacementRequest{}, validationError("unknown era " + in.Era)
		}
	}
	count := in.Count
	switch {
	case count <= 0:
		count = 1
	case count > MaxReplacements:
		count = MaxReplacements
	}
	excl := catalog.NewExclusions()
	for _, title := range in.WatchedTitles {
		excl.Add(title, 0)
	}
	for _, id := range in.ExcludeIDs {
		excl.AddID(id)
	}
	return ReplacementRequest{
		SessionID:  strings.TrimSpace(in.SessionID),
		Mood:       mood,
		Language:   lang,
		Era:        era,
		Genres:     cleanGenres(in.Genres),
		Exclusions: excl,
		Count:      count,
	}, nil
}

func cleanGenres(genres []string) []string {
	var out []string
	for _, g := range genres {
		if g = catalog.NormalizeGenre(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func validationError(msg string) error {
	return services.Wrap(services.ErrValidation, "recommend", "validate request", msg, nil)
}
