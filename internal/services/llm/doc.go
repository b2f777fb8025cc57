// Package llm provides a chat-completion client for OpenAI-compatible model
// gateways (OpenRouter by default) running in JSON mode.
//
// The generative recommender uses it to turn a mood prompt into a list of
// movie picks. The client is deliberately thin: it sends one system and one
// user message, extracts the content from the response (tolerating the
// delta/text variants some providers emit), and reports non-2xx responses as
// *StatusError so callers can tell rate limiting (IsRateLimited) apart from
// quota or outage failures (IsUnavailable).
//
// # Retry Behaviour
//
// Online requests make a single attempt by default. WithRetryMaxAttempts
// enables retries on 408/429/5xx, empty content and network timeouts with
// exponential backoff honouring Retry-After. Context cancellation aborts
// immediately.
//
// DecodeJSON decodes model payloads, stripping markdown fences first when the
// direct decode fails.
package llm
