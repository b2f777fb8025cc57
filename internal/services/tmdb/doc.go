// Package tmdb wraps the TMDB v3 REST API.
//
// Two callers use it: the generative recommender looks up posters and release
// dates by title and year, and the catalog importer pages through list and
// discover endpoints and pulls full details (credits, keywords, regional watch
// providers) for each movie. Requests can be paced with a token bucket so
// bulk imports stay under TMDB's rate limits.
package tmdb
