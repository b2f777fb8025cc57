// Package catalog holds the movie domain types shared by the store, the
// recommenders and the HTTP layer: Movie, the five era buckets, the eight
// supported languages, viewer profiles, and exclusion sets built from watch
// history.
//
// Era and language are the two hard filters every recommendation honours, so
// their parsing lives here rather than in each strategy.
package catalog
