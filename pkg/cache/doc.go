// Package cache stores pipeline results keyed by the full authorization
// context. The cache key covers the query, the canonical role, the result
// count and the compliance framework, so a cached entry can never be served
// across an authorization boundary.
package cache
