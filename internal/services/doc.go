// Package services defines shared utilities consumed by the recommendation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request, session and view identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper, so handlers can map a
//     failure to an HTTP status (validation, rate limited, unavailable) without
//     inspecting upstream details.
//
// External clients live in subpackages (llm, tmdb).
package services
