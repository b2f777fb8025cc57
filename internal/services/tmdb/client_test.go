package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"goodwatch/internal/services/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
	if _, err := tmdb.New("key", " ", "en-US"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestSearchMovieSendsYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key" || q.Get("query") != "Piku" || q.Get("primary_release_year") != "2015" {
			t.Fatalf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":7,"title":"Piku","poster_path":"/piku.jpg","release_date":"2015-05-08"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	resp, err := client.SearchMovie(context.Background(), "Piku", tmdb.SearchOptions{Year: 2015})
	if err != nil {
		t.Fatalf("SearchMovie returned error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].PosterPath != "/piku.jpg" {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestSearchMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchMovie(context.Background(), "fail", tmdb.SearchOptions{}); err == nil {
		t.Fatal("expected error when TMDB returns non-200")
	}
	if _, err := client.SearchMovie(context.Background(), "  ", tmdb.SearchOptions{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestGetMovieDetailsAppendsCreditsAndProviders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/42" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits,keywords,watch/providers" {
			t.Fatalf("unexpected append_to_response %q", got)
		}
		_, _ = w.Write([]byte(`{
			"id": 42, "title": "Zindagi Na Milegi Dobara", "original_language": "hi",
			"release_date": "2011-07-15", "runtime": 155, "imdb_id": "tt1562872",
			"genres": [{"id": 35, "name": "Comedy"}, {"id": 18, "name": "Drama"}],
			"belongs_to_collection": null,
			"credits": {
				"cast": [{"id": 1, "name": "Hrithik Roshan"}, {"id": 2, "name": "Farhan Akhtar"}],
				"crew": [{"id": 3, "name": "Zoya Akhtar", "job": "Director"}, {"id": 4, "name": "Someone", "job": "Editor"}]
			},
			"keywords": {"keywords": [{"id": 9, "name": "road trip"}]},
			"watch/providers": {"results": {"IN": {"flatrate": [{"provider_id": 8, "provider_name": "Netflix"}]}}}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	details, err := client.GetMovieDetails(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetMovieDetails returned error: %v", err)
	}
	if got := details.Directors(); len(got) != 1 || got[0] != "Zoya Akhtar" {
		t.Fatalf("unexpected directors %v", got)
	}
	if got := details.TopCast(1); len(got) != 1 || got[0] != "Hrithik Roshan" {
		t.Fatalf("unexpected cast %v", got)
	}
	if got := details.KeywordNames(); len(got) != 1 || got[0] != "road trip" {
		t.Fatalf("unexpected keywords %v", got)
	}
	if got := details.GenreNames(); len(got) != 2 || got[0] != "Comedy" {
		t.Fatalf("unexpected genres %v", got)
	}
	in := details.WatchProviders.Results["IN"]
	if len(in.Flatrate) != 1 || in.Flatrate[0].ProviderName != "Netflix" {
		t.Fatalf("unexpected providers %+v", details.WatchProviders)
	}
}

func TestGetMovieKeywordsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.GetMovieKeywords(context.Background(), 5); !errors.Is(err, tmdb.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDiscoverMoviesFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/discover/movie" || q.Get("with_original_language") != "ta" || q.Get("page") != "3" {
			t.Fatalf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if q.Get("primary_release_date.gte") != "2010-01-01" || q.Get("primary_release_date.lte") != "2019-12-31" {
			t.Fatalf("unexpected date range %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"page":3,"total_pages":9,"results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	page, err := client.DiscoverMovies(context.Background(), tmdb.DiscoverOptions{
		Page: 3, OriginalLanguage: "ta", ReleasedFrom: "2010-01-01", ReleasedTo: "2019-12-31",
	})
	if err != nil {
		t.Fatalf("DiscoverMovies returned error: %v", err)
	}
	if page.TotalPages != 9 {
		t.Fatalf("unexpected total pages %d", page.TotalPages)
	}
}
