// Package airdate defines the resolved air-schedule record shared by
// the resolver, cache, and overlay writers, and derives the weekday and
// countdown labels rendered onto posters.
package airdate
