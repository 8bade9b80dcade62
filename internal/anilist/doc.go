// Package anilist provides a minimal AniList GraphQL client covering the
// media search and lookup operations used for air-date resolution.
package anilist
