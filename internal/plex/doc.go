// Package plex reads show titles from a Plex library section over the
// server's HTTP API. Only the listing surface needed for overlay
// generation is implemented; writes and scans stay with Kometa.
package plex
