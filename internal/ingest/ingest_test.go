package ingest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gofrs/flock"

	"goodwatch/internal/catalog"
	"goodwatch/internal/ingest"
	"goodwatch/internal/moodtag"
	"goodwatch/internal/services"
	"goodwatch/internal/services/tmdb"
	"goodwatch/internal/store"
	"goodwatch/internal/testsupport"
)

const chefDetails = `{
  "id": 10, "title": "Chef", "original_title": "Chef", "original_language": "en",
  "overview": "A chef finds joy again cooking on a food truck.",
  "release_date": "2014-05-09", "poster_path": "/chef.jpg", "popularity": 42.5,
  "vote_average": 7.3, "vote_count": 5000, "imdb_id": "tt2883512", "runtime": 114,
  "genres": [{"id": 35, "name": "Comedy"}],
  "credits": {
    "cast": [{"name": "Jon Favreau"}, {"name": "Sofia Vergara"}],
    "crew": [{"name": "Jon Favreau", "job": "Director"}, {"name": "Someone", "job": "Editor"}]
  },
  "keywords": {"keywords": [{"name": "food truck"}, {"name": "comfort food"}]},
  "watch/providers": {"results": {
    "IN": {"flatrate": [{"provider_name": "Netflix"}], "rent": [{"provider_name": "Netflix"}, {"provider_name": "Apple TV"}]},
    "US": {"flatrate": [{"provider_name": "Hulu"}]}
  }}
}`

const pikuDetails = `{
  "id": 12, "title": "Piku", "original_language": "hi",
  "overview": "A road trip with a cranky father.", "release_date": "2015-05-08",
  "popularity": 12, "genres": [{"id": 35, "name": "Comedy"}],
  "belongs_to_collection": null,
  "credits": {"cast": [], "crew": [{"name": "Shoojit Sircar", "job": "Director"}]},
  "keywords": {"keywords": []},
  "watch/providers": {"results": {}}
}`

func newTMDBServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"page":1,"total_pages":2,"results":[{"id":10,"title":"Chef"},{"id":11,"title":"Broken"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"page":2,"total_pages":2,"results":[{"id":12,"title":"Piku"}]}`))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/discover/movie", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("with_original_language") != "hi" || q.Get("primary_release_date.gte") != "2010-01-01" || q.Get("primary_release_date.lte") != "2019-12-31" {
			t.Errorf("unexpected discover query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[{"id":12,"title":"Piku"}]}`))
	})
	mux.HandleFunc("/movie/10", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("append_to_response") == "" {
			t.Errorf("details request missing append_to_response")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chefDetails))
	})
	mux.HandleFunc("/movie/11", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/movie/12", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pikuDetails))
	})
	mux.HandleFunc("/movie/20/keywords", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":20,"keywords":[{"name":"gentle"},{"name":"seaside"}]}`))
	})
	mux.HandleFunc("/movie/21/keywords", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newService(t *testing.T) (*ingest.Service, *store.Store, string) {
	t.Helper()
	server := newTMDBServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBBaseURL(server.URL))
	st := testsupport.MustOpenStore(t, cfg)
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, "en-US", tmdb.WithRegion("IN"))
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	return ingest.NewService(client, st, cfg.DataDir(), nil), st, cfg.DataDir()
}

func TestImportUpsertsTaggedMovies(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()

	report, err := svc.Import(ctx, ingest.ImportOptions{Endpoint: "popular", Pages: 5})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	want := ingest.ImportReport{Pages: 2, Seen: 3, Imported: 2, Failed: 1}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}

	chef, err := st.GetMovie(ctx, 10)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if chef.Director != "Jon Favreau" || chef.IMDbID != "tt2883512" || chef.RuntimeMinutes != 114 {
		t.Fatalf("unexpected chef metadata: %+v", chef)
	}
	if !slices.Equal(chef.Providers, []string{"Netflix", "Apple TV"}) {
		t.Fatalf("providers = %v", chef.Providers)
	}
	if chef.PosterPath == nil || *chef.PosterPath != "/chef.jpg" {
		t.Fatalf("poster = %v", chef.PosterPath)
	}
	for _, tag := range []string{moodtag.Happy, moodtag.Relaxing} {
		if !slices.Contains(chef.MoodTags, tag) {
			t.Fatalf("expected tag %q in %v", tag, chef.MoodTags)
		}
	}

	piku, err := st.GetMovie(ctx, 12)
	if err != nil {
		t.Fatalf("GetMovie piku: %v", err)
	}
	if piku.Language != "Hindi" || len(piku.Providers) != 0 {
		t.Fatalf("unexpected piku row: %+v", piku)
	}
	if piku.MoodTags == nil {
		t.Fatal("untaggable overview should store an empty tag list, not NULL")
	}
	pending, err := st.MoviesMissingMoodTags(ctx, 10, 0)
	if err != nil {
		t.Fatalf("MoviesMissingMoodTags: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("imported rows should not need enrichment, got %d", len(pending))
	}
}

func TestImportDiscoverPassesFilters(t *testing.T) {
	svc, st, _ := newService(t)
	era, _ := catalog.ParseEra("2010s")

	report, err := svc.Import(context.Background(), ingest.ImportOptions{
		Endpoint:     "discover",
		Pages:        3,
		LanguageCode: "hi",
		Era:          era,
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Pages != 1 || report.Imported != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if n, _ := st.CountMovies(context.Background()); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestImportRejectsUnknownEndpoint(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Import(context.Background(), ingest.ImportOptions{Endpoint: "trending"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestImportRefusesWhileLocked(t *testing.T) {
	svc, _, dataDir := newService(t)
	held := flock.New(dataDir + "/ingest.lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	if _, err := svc.Import(context.Background(), ingest.ImportOptions{}); !errors.Is(err, ingest.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if _, err := svc.Enrich(context.Background(), ingest.EnrichOptions{}); !errors.Is(err, ingest.ErrBusy) {
		t.Fatalf("expected ErrBusy from Enrich, got %v", err)
	}
}

func TestEnrichTagsPendingRows(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	testsupport.SeedMovies(t, st,
		catalog.Movie{ID: 20, Title: "Seaside Summer", ReleaseDate: "2016-06-01", LanguageCode: "en", Overview: "Two sisters spend a summer by the sea.", Popularity: 5},
		catalog.Movie{ID: 21, Title: "Office Hours", ReleaseDate: "2012-03-01", LanguageCode: "en", Overview: "A week at the office.", Keywords: []string{"feel-good"}, Popularity: 4},
		catalog.Movie{ID: 22, Title: "Already Done", ReleaseDate: "2012-03-01", LanguageCode: "en", MoodTags: []string{moodtag.Scary}, Popularity: 3},
	)

	report, err := svc.Enrich(ctx, ingest.EnrichOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	want := ingest.EnrichReport{Processed: 2, Tagged: 2, KeywordFailures: 1}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}

	seaside, _ := st.GetMovie(ctx, 20)
	if !slices.Equal(seaside.MoodTags, []string{moodtag.Light, moodtag.Relaxing}) {
		t.Fatalf("seaside tags = %v", seaside.MoodTags)
	}
	if !slices.Equal(seaside.Keywords, []string{"gentle", "seaside"}) {
		t.Fatalf("seaside keywords not refreshed: %v", seaside.Keywords)
	}
	office, _ := st.GetMovie(ctx, 21)
	if !slices.Equal(office.MoodTags, []string{moodtag.Fun, moodtag.Happy}) {
		t.Fatalf("office tags = %v", office.MoodTags)
	}
	if !slices.Equal(office.Keywords, []string{"feel-good"}) {
		t.Fatalf("office keywords should be kept: %v", office.Keywords)
	}
	done, _ := st.GetMovie(ctx, 22)
	if !slices.Equal(done.MoodTags, []string{moodtag.Scary}) {
		t.Fatalf("tagged row changed: %v", done.MoodTags)
	}

	again, err := svc.Enrich(ctx, ingest.EnrichOptions{Limit: 10})
	if err != nil {
		t.Fatalf("second Enrich: %v", err)
	}
	if again.Processed != 0 {
		t.Fatalf("expected nothing left to enrich, got %+v", again)
	}
}
