package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"goodwatch/internal/services"
	"goodwatch/internal/services/llm"
	"goodwatch/internal/services/tmdb"
)

type fakeModel struct {
	mu      sync.Mutex
	content string
	err     error
	system  []string
	user    []string
}

func (f *fakeModel) CompleteJSON(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.system = append(f.system, system)
	f.user = append(f.user, user)
	return f.content, f.err
}

type fakePosters struct {
	pages  map[string]*tmdb.Page
	failed map[string]bool
}

func (f *fakePosters) SearchMovie(_ context.Context, query string, _ tmdb.SearchOptions) (*tmdb.Page, error) {
	if f.failed[query] {
		return nil, errors.New("tmdb down")
	}
	if page, ok := f.pages[query]; ok {
		return page, nil
	}
	return &tmdb.Page{}, nil
}

func tmdbPage(id int64, title, date, poster string, popularity float64) *tmdb.Page {
	return &tmdb.Page{Results: []tmdb.Movie{{ID: id, Title: title, ReleaseDate: date, PosterPath: poster, Popularity: popularity}}}
}

const modelOutput = "```json\n" + `{"movies": [
  {"title": "Paddington 2", "year": 2017, "language": "English", "genres": ["Family"], "director": "Paul King", "why": "w"},
  {"title": "Paddington", "year": "2014", "language": "English", "genres": ["Family"], "director": "Paul King"},
  {"title": "Chef", "year": 2014, "language": "English", "genres": ["Comedy"], "director": "Jon Favreau"},
  {"title": "Piku", "year": 2015, "language": "Hindi", "genres": ["Comedy"], "director": "Shoojit Sircar"},
  {"title": "Julie & Julia", "year": 2009, "language": "English", "genres": ["Drama"], "director": "Nora Ephron"},
  {"title": "The Intern", "year": 2015, "language": "en", "genres": "Comedy, Drama", "director": "Nancy Meyers"},
  {"title": "About Time", "year": 2013, "language": "English", "genres": ["Romance"], "director": "Richard Curtis"},
  {"title": "Late Release", "year": 2019, "language": "English", "genres": ["Drama"], "director": "Someone New"},
  {"title": "   ", "year": 2015, "language": "English"},
  {"title": "the intern", "year": 2015, "language": "English", "genres": ["Comedy"], "director": "Nancy Meyers"},
  {"title": "Begin Again", "year": 2013, "language": "English", "genres": ["Music"], "director": "John Carney"},
  {"title": "Avengers: Endgame", "year": 2019, "language": "English", "genres": ["Action"], "director": "Russo Brothers"}
]}` + "\n```"

func newTestGenerative(model Completer) *GenerativeRecommender {
	posters := &fakePosters{
		pages: map[string]*tmdb.Page{
			"Paddington 2":      tmdbPage(1, "Paddington 2", "2017-11-10", "/p2.jpg", 150),
			"Paddington":        tmdbPage(2, "Paddington", "2014-11-28", "/p1.jpg", 120),
			"The Intern":        tmdbPage(3, "The Intern", "2015-09-25", "/intern.jpg", 40),
			"Late Release":      tmdbPage(4, "Late Release", "2019-12-10", "/late.jpg", 5),
			"Begin Again":       tmdbPage(5, "Begin Again", "2013-06-27", "/begin.jpg", 20),
			"Avengers: Endgame": tmdbPage(6, "Avengers: Endgame", "2019-04-24", "/end.jpg", 500),
		},
		failed: map[string]bool{"About Time": true},
	}
	return NewGenerativeRecommender(model, posters, GenerativeOptions{
		BlockbusterPopularity: 100,
		FreshnessDays:         30,
		PosterTimeout:         time.Second,
		Now:                   func() time.Time { return time.Date(2019, 12, 20, 0, 0, 0, 0, time.UTC) },
	}, nil)
}

func TestGenerativeDisplaysDistinctGenresAndDirectors(t *testing.T) {
	model := &fakeModel{content: `{"movies": [
  {"title": "A", "year": 2015, "language": "English", "genres": ["Drama"], "director": "D1"},
  {"title": "B", "year": 2015, "language": "English", "genres": ["Drama"], "director": "D2"},
  {"title": "C", "year": 2015, "language": "English", "genres": ["Comedy"], "director": "D1"},
  {"title": "D", "year": 2015, "language": "English", "genres": ["Horror"], "director": "D3"},
  {"title": "E", "year": 2015, "language": "English", "genres": ["Drama"], "director": "D4"},
  {"title": "F", "year": 2015, "language": "English", "genres": ["Drama"], "director": "D5"}
]}`}
	rec := newTestGenerative(model)
	req, err := NewRequest(RequestInput{Mood: "need a thrill", Language: "English", Era: "2010s"})
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	res, err := rec.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	displayed := res.Displayed()
	genres := map[string]bool{}
	directors := map[string]bool{}
	for _, m := range displayed {
		if genres[m.PrimaryGenre()] || directors[m.PrimaryDirector()] {
			t.Fatalf("displayed picks repeat a genre or director: %v", titles(displayed))
		}
		genres[m.PrimaryGenre()] = true
		directors[m.PrimaryDirector()] = true
	}
	assertTitles(t, res.Movies, "B", "C", "D", "A", "E", "F")
}

func TestGenerativeSanitizesAndArranges(t *testing.T) {
	model := &fakeModel{content: modelOutput}
	rec := newTestGenerative(model)
	req, err := NewRequest(RequestInput{Mood: "tired, need comfort", Language: "English", Era: "2010s", AgeBracket: "25-34"})
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	req.Exclusions.Add("Chef", 2014)

	res, err := rec.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	assertTitles(t, res.Movies, "Paddington 2", "The Intern", "About Time", "Paddington", "Begin Again", "Avengers: Endgame")

	if res.Movies[0].PosterPath == nil || *res.Movies[0].PosterPath != "/p2.jpg" {
		t.Fatalf("expected poster attached, got %+v", res.Movies[0].PosterPath)
	}
	if res.Movies[2].PosterPath != nil {
		t.Fatalf("expected nil poster after failed lookup, got %q", *res.Movies[2].PosterPath)
	}
	if got := res.Movies[1].Genres; len(got) != 2 || got[0] != "Comedy" || got[1] != "Drama" {
		t.Fatalf("expected comma genres split, got %v", got)
	}
	for _, m := range res.Movies {
		if m.Language != "English" {
			t.Fatalf("unexpected language on %q: %q", m.Title, m.Language)
		}
	}

	system := model.system[0]
	for _, want := range []string{"ALL 6 movies MUST be in English", "between 2010 and 2019", "Chef (2014)", "Age: 25-34", "last 30 days (today is 2019-12-20)"} {
		if !strings.Contains(system, want) {
			t.Fatalf("system prompt missing %q:\n%s", want, system)
		}
	}
	if !strings.Contains(model.user[0], "tired, need comfort") {
		t.Fatalf("user prompt missing mood: %q", model.user[0])
	}
}

func TestGenerativeMapsUpstreamErrors(t *testing.T) {
	cases := []struct {
		err    error
		marker error
	}{
		{&llm.StatusError{StatusCode: 429}, services.ErrRateLimited},
		{&llm.StatusError{StatusCode: 402}, services.ErrUnavailable},
		{&llm.StatusError{StatusCode: 503}, services.ErrUnavailable},
		{fmt.Errorf("call: %w", context.DeadlineExceeded), services.ErrTimeout},
		{errors.New("connection refused"), services.ErrUnavailable},
	}
	req, _ := NewRequest(RequestInput{Mood: "bored", Language: "Tamil", Era: "2000s"})
	for _, tc := range cases {
		rec := newTestGenerative(&fakeModel{err: tc.err})
		_, err := rec.Recommend(context.Background(), req)
		if !errors.Is(err, tc.marker) {
			t.Fatalf("%v: expected %v, got %v", tc.err, tc.marker, err)
		}
		if strings.Contains(services.Kind(err), "internal") {
			t.Fatalf("%v: unexpected internal kind", tc.err)
		}
	}
}

func TestGenerativeBreakerOpensAfterRepeatedFailures(t *testing.T) {
	model := &fakeModel{err: &llm.StatusError{StatusCode: 500}}
	rec := newTestGenerative(model)
	req, _ := NewRequest(RequestInput{Mood: "bored", Language: "English", Era: "2000s"})

	for range 5 {
		_, _ = rec.Recommend(context.Background(), req)
	}
	calls := len(model.system)
	_, err := rec.Recommend(context.Background(), req)
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable from open breaker, got %v", err)
	}
	if len(model.system) != calls {
		t.Fatal("expected open breaker to skip the model call")
	}
}

func TestGenerativeRejectsGarbage(t *testing.T) {
	rec := newTestGenerative(&fakeModel{content: "I cannot help with that"})
	req, _ := NewRequest(RequestInput{Mood: "bored", Language: "English", Era: "2000s"})
	if _, err := rec.Recommend(context.Background(), req); err == nil {
		t.Fatal("expected malformed output to fail")
	}
}

func TestGenerativeReplacementsDropFallbackLanguage(t *testing.T) {
	model := &fakeModel{content: `[
		{"title": "Kahaani", "year": 2012, "language": "Hindi", "genres": ["Thriller"], "director": "Sujoy Ghosh"},
		{"title": "Gone Girl", "year": 2014, "language": "English", "language_fallback": true},
		{"title": "Queen", "year": 2013, "language": "Hindi", "genres": ["Comedy"], "director": "Vikas Bahl"}
	]`}
	rec := newTestGenerative(model)
	req, err := NewReplacementRequest(ReplacementInput{Mood: "can't sleep", PreferredLanguage: "Hindi", WatchedTitles: []string{"Queen"}, Count: 2})
	if err != nil {
		t.Fatalf("NewReplacementRequest returned error: %v", err)
	}
	movies, err := rec.Replacements(context.Background(), req)
	if err != nil {
		t.Fatalf("Replacements returned error: %v", err)
	}
	assertTitles(t, movies, "Kahaani")
	if !strings.Contains(model.system[0], "EXCLUDE these already watched or shown movies: Queen") {
		t.Fatalf("replacement prompt missing exclusions:\n%s", model.system[0])
	}
}
