// Package main hosts the goodwatch CLI entrypoint and command graph.
//
// The Cobra command tree runs the HTTP server, fills and tags the movie
// catalog from TMDB, and offers terminal access to recommendations, watched
// history and feedback. Configuration resolution and logger setup live in the
// shared command context so subcommands only wire packages together.
package main
