// Package overrides loads user-authored title overrides that either pin
// a library title to a specific AniList entry or exclude it from
// resolution entirely.
package overrides
