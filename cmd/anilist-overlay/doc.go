// Command anilist-overlay resolves Plex library show titles against
// AniList and writes Kometa overlay files with next-air weekday and
// countdown labels.
package main
