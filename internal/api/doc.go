// Package api exposes goodwatch over HTTP.
//
// Service holds the request logic shared by every transport: it validates
// wire requests, merges a session's watched history into the exclusions,
// runs the configured recommender and parks each result's backups in a
// replacement pool addressed by view id. Server mounts Service on a chi
// router with request ids, CORS, per-IP rate limiting and Prometheus
// instrumentation.
package api
