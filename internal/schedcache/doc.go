// Package schedcache persists resolved air schedules between runs so
// unchanged titles do not trigger repeated AniList queries. The store
// is a flat JSON mapping keyed by library title; entries expire after a
// configurable duration and can be pruned when titles leave the library.
package schedcache
