package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goodwatch/internal/catalog"
	"goodwatch/internal/config"
	"goodwatch/internal/store"
	"goodwatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	store      *store.Store
	configPath string
}

func setupCLITestEnv(t *testing.T, tmdbURL string) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TMDB_API_KEY", "")
	if tmdbURL == "" {
		tmdbURL = "http://127.0.0.1:1"
	}
	cfg.TMDB.BaseURL = tmdbURL

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		configPath: configPath,
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[store]\npath = %q\n\n[tmdb]\napi_key = %q\nbase_url = %q\nrequest_interval_ms = 0\n\n[logging]\nlevel = \"error\"\n",
		cfg.Store.Path,
		cfg.TMDB.APIKey,
		cfg.TMDB.BaseURL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, "")

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Strategy: catalog")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestTagCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"tag", "tired, need comfort"}, "")
	if err != nil {
		t.Fatalf("tag: %v", err)
	}
	if strings.TrimSpace(out) != "light, relaxing" {
		t.Fatalf("unexpected tags %q", out)
	}
	out, _, _ = runCLI(t, []string{"tag", "spreadsheet"}, "")
	requireContains(t, out, "(no tags)")
}

func TestRecommendCommand(t *testing.T) {
	env := setupCLITestEnv(t, "")
	testsupport.SeedMovies(t, env.store, testsupport.ComfortCatalog()...)

	out, _, err := runCLI(t, []string{"recommend", "tired, need comfort", "--era", "2010s", "--all", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend --json: %v", err)
	}
	var movies []catalog.Movie
	if err := json.Unmarshal([]byte(out), &movies); err != nil {
		t.Fatalf("decode recommend output: %v\n%s", err, out)
	}
	if len(movies) != 6 || movies[0].Title != "Paddington" {
		t.Fatalf("unexpected picks %+v", movies)
	}

	out, _, err = runCLI(t, []string{"recommend", "tired,", "need", "comfort", "--era", "2010s"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, out, `Picks for "tired, need comfort" (English, 2010s) from the catalog strategy`)
	requireContains(t, out, "Paddington")

	if _, _, err := runCLI(t, []string{"recommend", "tired"}, env.configPath); err == nil {
		t.Fatal("expected error without --era")
	}
	if _, _, err := runCLI(t, []string{"recommend", "tired", "--era", "2010s", "--language", "Klingon"}, env.configPath); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestRecommendCommandSkipsSessionHistory(t *testing.T) {
	env := setupCLITestEnv(t, "")
	testsupport.SeedMovies(t, env.store, testsupport.ComfortCatalog()...)
	if _, err := env.store.RecordWatched(context.Background(), "s1", "Paddington", 2014); err != nil {
		t.Fatalf("RecordWatched: %v", err)
	}

	out, _, err := runCLI(t, []string{"recommend", "tired, need comfort", "--era", "2010s", "--session", "s1", "--all", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var movies []catalog.Movie
	if err := json.Unmarshal([]byte(out), &movies); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, m := range movies {
		if m.Title == "Paddington" {
			t.Fatal("watched title recommended again")
		}
	}
}

func TestHistoryAndFeedbackCommands(t *testing.T) {
	env := setupCLITestEnv(t, "")
	ctx := context.Background()

	out, _, err := runCLI(t, []string{"history", "--session", "s1"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No watched movies for session s1")

	for range 2 {
		if _, err := env.store.RecordWatched(ctx, "s1", "Chef", 2014); err != nil {
			t.Fatalf("RecordWatched: %v", err)
		}
	}
	out, _, err = runCLI(t, []string{"history", "--session", "s1"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.Count(out, "Chef") != 2 {
		t.Fatalf("expected both watched rows\n%s", out)
	}
	if _, _, err := runCLI(t, []string{"history"}, env.configPath); err == nil {
		t.Fatal("expected error without --session")
	}

	out, _, err = runCLI(t, []string{"feedback", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("feedback list: %v", err)
	}
	requireContains(t, out, "No feedback yet")

	if _, err := env.store.RecordFeedback(ctx, store.Feedback{SessionID: "s1", Mood: "date night", WasHelpful: true, Text: "Too long: great picks"}); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	out, _, err = runCLI(t, []string{"feedback", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("feedback list: %v", err)
	}
	requireContains(t, out, "1 feedback entries, 1 helpful")
	requireContains(t, out, "date night")
}

func TestCatalogImportAndStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[{"id":3,"title":"Chef"}]}`))
	})
	mux.HandleFunc("/movie/3", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"title":"Chef","original_language":"en","release_date":"2014-05-09",
			"overview":"A chef finds joy on a food truck.","popularity":9,
			"credits":{"crew":[{"name":"Jon Favreau","job":"Director"}]},
			"keywords":{"keywords":[{"name":"comfort food"}]}}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	env := setupCLITestEnv(t, server.URL)

	out, _, err := runCLI(t, []string{"catalog", "import", "--pages", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog import: %v", err)
	}
	requireContains(t, out, "Imported 1 of 1 movies from 1 page(s); 0 failed")

	out, _, err = runCLI(t, []string{"catalog", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog stats: %v", err)
	}
	var stats store.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.Movies != 1 || stats.Tagged != 1 || stats.ByLanguage["en"] != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	if _, _, err := runCLI(t, []string{"catalog", "import", "--language", "Hindi"}, env.configPath); err == nil {
		t.Fatal("expected --language to require the discover endpoint")
	}
}

func TestCatalogEnrichOffline(t *testing.T) {
	env := setupCLITestEnv(t, "")
	testsupport.SeedMovies(t, env.store, catalog.Movie{
		ID: 7, Title: "Quiet Days", ReleaseDate: "2018-01-01", LanguageCode: "en",
		Overview: "A gentle story.", Popularity: 1,
	})

	out, _, err := runCLI(t, []string{"catalog", "enrich", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog enrich: %v", err)
	}
	requireContains(t, out, "Processed 1 movies; 1 tagged; 0 keyword lookups failed")
}
