package recommend_test

import (
	"context"
	"testing"

	"goodwatch/internal/recommend"
	"goodwatch/internal/testsupport"
)

func newCatalogRecommender(t *testing.T) *recommend.CatalogRecommender {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	testsupport.SeedMovies(t, st, testsupport.ComfortCatalog()...)
	return recommend.NewCatalogRecommender(st, recommend.CatalogOptions{
		CandidateWindow:       30,
		BlockbusterPopularity: 100,
	}, nil)
}

func mustRequest(t *testing.T, in recommend.RequestInput) recommend.Request {
	t.Helper()
	req, err := recommend.NewRequest(in)
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	return req
}

func TestCatalogTiredNeedComfortEnglish2010s(t *testing.T) {
	rec := newCatalogRecommender(t)
	req := mustRequest(t, recommend.RequestInput{Mood: "tired, need comfort", Language: "English", Era: "2010s", SessionID: "s1"})

	res, err := rec.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if len(res.Movies) != recommend.ResultSize {
		t.Fatalf("expected 6 movies, got %d", len(res.Movies))
	}
	for _, m := range res.Movies {
		if m.Year < 2010 || m.Year > 2019 {
			t.Fatalf("%q outside 2010s: %d", m.Title, m.Year)
		}
		if m.Language != "English" || m.LanguageCode != "en" {
			t.Fatalf("%q has language %q", m.Title, m.Language)
		}
		if m.Why == "" || m.WhereToWatch == "" {
			t.Fatalf("%q missing presentation fields: %+v", m.Title, m)
		}
	}

	directors := map[string]bool{}
	genres := map[string]bool{}
	for _, m := range res.Displayed() {
		if directors[m.PrimaryDirector()] || genres[m.PrimaryGenre()] {
			t.Fatalf("displayed picks not diverse: %+v", res.Displayed())
		}
		directors[m.PrimaryDirector()] = true
		genres[m.PrimaryGenre()] = true
	}
	if got := res.Displayed()[0].Title; got != "Paddington" {
		t.Fatalf("expected most popular pick first, got %q", got)
	}
	if len(res.Backup()) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(res.Backup()))
	}
}

func TestCatalogHonoursExclusions(t *testing.T) {
	rec := newCatalogRecommender(t)
	req := mustRequest(t, recommend.RequestInput{Mood: "tired, need comfort", Language: "English", Era: "2010s"})
	req.Exclusions.Add("Paddington", 2014)
	req.Exclusions.Add("Chef", 2014)

	res, err := rec.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	for _, m := range res.Movies {
		if req.Exclusions.Excludes(m) {
			t.Fatalf("excluded movie returned: %q (%d)", m.Title, m.Year)
		}
	}
	if len(res.Movies) != 6 {
		t.Fatalf("expected 6 remaining matches, got %d", len(res.Movies))
	}
}

func TestCatalogSkipsTagFilterForUntaggableMood(t *testing.T) {
	rec := newCatalogRecommender(t)
	req := mustRequest(t, recommend.RequestInput{Mood: "whatever works", Language: "English", Era: "2010s"})

	res, err := rec.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	found := false
	for _, m := range res.Movies {
		if m.Title == "Prisoners" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected untagged query to include the thriller, got %+v", res.Movies)
	}
}

func TestCatalogPartialResults(t *testing.T) {
	rec := newCatalogRecommender(t)
	req := mustRequest(t, recommend.RequestInput{Mood: "lazy sunday", Language: "Hindi", Era: "2010s"})

	res, err := rec.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if len(res.Movies) != 1 || res.Movies[0].Title != "Piku" || res.Backup() != nil {
		t.Fatalf("expected the single Hindi match, got %+v", res.Movies)
	}
}

func TestCatalogReplacementsSkipShownTitles(t *testing.T) {
	rec := newCatalogRecommender(t)
	req, err := recommend.NewReplacementRequest(recommend.ReplacementInput{
		Mood:              "need comfort",
		PreferredLanguage: "English",
		Era:               "2010s",
		WatchedTitles:     []string{"Paddington", "Paddington 2"},
		Count:             2,
	})
	if err != nil {
		t.Fatalf("NewReplacementRequest returned error: %v", err)
	}
	movies, err := rec.Replacements(context.Background(), req)
	if err != nil {
		t.Fatalf("Replacements returned error: %v", err)
	}
	if len(movies) != 2 || movies[0].Title != "Chef" || movies[1].Title != "The Intern" {
		t.Fatalf("unexpected replacements %+v", movies)
	}
}
