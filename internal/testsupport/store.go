package testsupport

import (
	"context"
	"testing"

	"goodwatch/internal/catalog"
	"goodwatch/internal/config"
	"goodwatch/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

// SeedMovies upserts movies into st, failing the test on error.
func SeedMovies(t testing.TB, st *store.Store, movies ...catalog.Movie) {
	t.Helper()

	ctx := context.Background()
	for _, m := range movies {
		if err := st.UpsertMovie(ctx, m); err != nil {
			t.Fatalf("seed %q: %v", m.Title, err)
		}
	}
}
