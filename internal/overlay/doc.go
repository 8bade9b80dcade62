// Package overlay renders Kometa overlay definition files. Two
// documents are produced per run: one naming each show's airing
// weekday and one carrying the countdown bucket. Both use Kometa's
// plex_search title targeting so overlays bind by show title.
package overlay
