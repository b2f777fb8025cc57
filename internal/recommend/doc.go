// Package recommend turns a mood plus language and era into an ordered list
// of movie picks.
//
// Two strategies implement Recommender. CatalogRecommender filters the local
// catalog by language, era and mood-tag overlap and never needs a model.
// GenerativeRecommender prompts a chat model in JSON mode, sanitizes what comes
// back and attaches TMDB posters concurrently. Both return at most six movies:
// the first three are displayed and the rest seed the replacement pool.
//
// Results are arranged so the displayed three differ in director, primary
// genre and franchise, with at most one blockbuster among them. When the
// candidates cannot satisfy that, the diverse prefix comes first and the
// remaining slots are filled by popularity.
package recommend
