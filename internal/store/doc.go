// Package store persists the movie catalog and per-session history in SQLite.
//
// Three tables back the service: movies (the TMDB-derived catalog, with mood
// tags that stay NULL until enrichment runs), watched_movies and feedback.
// The latter two are append-only; nothing in the package updates or deletes
// their rows.
//
// The database runs in WAL mode with a busy timeout, and writes retry on
// SQLITE_BUSY so the fire-and-forget history writes issued by replacement
// pools do not fail under concurrent requests.
package store
