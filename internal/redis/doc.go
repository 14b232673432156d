// Package redis provides the Redis-backed caching layer: a thin client
// wrapper, a per-viewer view-count debouncer, and a short-lived cache for
// trending feed results.
package redis
