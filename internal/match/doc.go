// Package match selects the best AniList candidate for a library title.
// Scoring compares the normalized library title against every primary
// title and synonym of each candidate and keeps the highest ratio;
// candidates below the confidence floor are rejected outright.
package match
