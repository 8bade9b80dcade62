// Package resolver turns a library show title into a resolved air
// schedule and overlay label. Resolution consults manual overrides
// first, then the persistent cache, and only then AniList, with a
// blocking rate limiter spacing out remote calls.
package resolver
