// Package ingest fills the catalog from TMDB.
//
// Import walks TMDB list or discover pages, fetches details with credits,
// keywords and watch providers for each movie, tags it and upserts it.
// Enrich revisits rows whose mood tags are still NULL, refreshing their
// keywords first. Both take a file lock in the data directory so two runs
// never write the catalog at once.
package ingest
