package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"goodwatch/internal/catalog"
	"goodwatch/internal/moodtag"
	"goodwatch/internal/services"
	"goodwatch/internal/store"
	"goodwatch/internal/testsupport"
)

func openSeeded(t *testing.T) *store.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMovies(t, st, testsupport.ComfortCatalog()...)
	return st
}

func TestOpenCreatesSchemaAndReopens(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := st.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := store.OpenPath(cfg.Store.Path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	_ = reopened.Close()
}

func TestQueryMoviesFiltersLanguageEraAndTags(t *testing.T) {
	st := openSeeded(t)
	era, _ := catalog.ParseEra("2010s")

	movies, err := st.QueryMovies(context.Background(), store.MovieQuery{
		LanguageCode: "en",
		Era:          era,
		MoodTags:     []string{moodtag.Light},
		Limit:        30,
	})
	if err != nil {
		t.Fatalf("QueryMovies returned error: %v", err)
	}
	if len(movies) != 8 {
		t.Fatalf("expected 8 matches, got %d", len(movies))
	}
	for i, m := range movies {
		if m.LanguageCode != "en" || m.Language != "English" {
			t.Fatalf("unexpected language %q/%q for %q", m.LanguageCode, m.Language, m.Title)
		}
		if m.Year < 2010 || m.Year > 2019 {
			t.Fatalf("%q outside era: %d", m.Title, m.Year)
		}
		if i > 0 && movies[i-1].Popularity < m.Popularity {
			t.Fatalf("expected popularity order, %q before %q", movies[i-1].Title, m.Title)
		}
	}
	if movies[0].Title != "Paddington" || movies[0].PosterPath == nil {
		t.Fatalf("unexpected first row %+v", movies[0])
	}
}

func TestQueryMoviesSkipsExclusionsBeforeLimit(t *testing.T) {
	st := openSeeded(t)
	era, _ := catalog.ParseEra("2010s")
	excl := catalog.NewExclusions()
	excl.Add("Paddington", 2014)
	excl.AddID(3)

	movies, err := st.QueryMovies(context.Background(), store.MovieQuery{
		LanguageCode: "en",
		Era:          era,
		MoodTags:     []string{moodtag.Relaxing},
		Exclude:      excl,
		Limit:        2,
	})
	if err != nil {
		t.Fatalf("QueryMovies returned error: %v", err)
	}
	if len(movies) != 2 || movies[0].Title != "Paddington 2" || movies[1].Title != "The Intern" {
		t.Fatalf("unexpected rows %+v", movies)
	}
}

func TestUpsertKeepsMoodTagsWhenNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	m := testsupport.Movie(42, "Piku", "2015-05-08", "hi", "Comedy", "Shoojit Sircar", 10, moodtag.Happy)
	testsupport.SeedMovies(t, st, m)

	m.MoodTags = nil
	m.Popularity = 12
	if err := st.UpsertMovie(ctx, m); err != nil {
		t.Fatalf("UpsertMovie returned error: %v", err)
	}
	got, err := st.GetMovie(ctx, 42)
	if err != nil {
		t.Fatalf("GetMovie returned error: %v", err)
	}
	if len(got.MoodTags) != 1 || got.MoodTags[0] != moodtag.Happy || got.Popularity != 12 {
		t.Fatalf("unexpected movie after upsert %+v", got)
	}
	if _, err := st.GetMovie(ctx, 999); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnrichmentLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	m := testsupport.Movie(5, "Chef", "2014-05-09", "en", "Comedy", "Jon Favreau", 10)
	m.MoodTags = nil
	testsupport.SeedMovies(t, st, m)

	pending, err := st.MoviesMissingMoodTags(ctx, 10, 0)
	if err != nil {
		t.Fatalf("MoviesMissingMoodTags returned error: %v", err)
	}
	if len(pending) != 1 || pending[0].MoodTags != nil {
		t.Fatalf("expected one untagged row, got %+v", pending)
	}

	if err := st.SetMoodTags(ctx, 5, []string{"food", "road trip"}, []string{moodtag.Happy}); err != nil {
		t.Fatalf("SetMoodTags returned error: %v", err)
	}
	if err := st.SetMoodTags(ctx, 77, nil, nil); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Movies != 1 || stats.Tagged != 1 || stats.Untagged != 0 || stats.ByLanguage["en"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	got, _ := st.GetMovie(ctx, 5)
	if len(got.Keywords) != 2 {
		t.Fatalf("expected keywords stored, got %v", got.Keywords)
	}
}

func TestWatchedHistoryKeepsDuplicatesInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, title := range []string{"Chef", "Piku", "Chef"} {
		if _, err := st.RecordWatched(ctx, "s1", title, 2014); err != nil {
			t.Fatalf("RecordWatched returned error: %v", err)
		}
	}
	if _, err := st.RecordWatched(ctx, "s2", "Other", 0); err != nil {
		t.Fatalf("RecordWatched returned error: %v", err)
	}

	entries, err := st.ListWatched(ctx, "s1")
	if err != nil {
		t.Fatalf("ListWatched returned error: %v", err)
	}
	if len(entries) != 3 || entries[0].Title != "Chef" || entries[1].Title != "Piku" || entries[2].Title != "Chef" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	excl, err := st.WatchedExclusions(ctx, "s1")
	if err != nil {
		t.Fatalf("WatchedExclusions returned error: %v", err)
	}
	if !excl.Excludes(catalog.Movie{Title: "chef", Year: 2014}) || excl.Excludes(catalog.Movie{Title: "Other"}) {
		t.Fatalf("unexpected exclusions %v", excl.Titles())
	}

	if _, err := st.RecordWatched(ctx, "", "Chef", 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFeedbackNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	recs := []catalog.Movie{{Title: "Chef", Year: 2014, Genres: []string{"Comedy"}}}
	if _, err := st.RecordFeedback(ctx, store.Feedback{SessionID: "s1", Mood: "tired", WasHelpful: true, Recommendations: recs}); err != nil {
		t.Fatalf("RecordFeedback returned error: %v", err)
	}
	if _, err := st.RecordFeedback(ctx, store.Feedback{SessionID: "s2", Mood: "bored", Text: "Seen them all"}); err != nil {
		t.Fatalf("RecordFeedback returned error: %v", err)
	}

	items, err := st.ListFeedback(ctx, 10)
	if err != nil {
		t.Fatalf("ListFeedback returned error: %v", err)
	}
	if len(items) != 2 || items[0].SessionID != "s2" || items[0].WasHelpful || items[0].Text != "Seen them all" {
		t.Fatalf("unexpected feedback order %+v", items)
	}
	if !items[1].WasHelpful || len(items[1].Recommendations) != 1 || items[1].Recommendations[0].Title != "Chef" {
		t.Fatalf("unexpected stored recommendations %+v", items[1])
	}
}

func TestOpenPathRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gw.db")
	st, err := store.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath returned error: %v", err)
	}
	if err := store.ForceSchemaVersion(st, 99); err != nil {
		t.Fatalf("force version: %v", err)
	}
	_ = st.Close()

	if _, err := store.OpenPath(path); !errors.Is(err, store.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
