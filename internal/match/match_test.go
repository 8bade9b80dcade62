package match

import (
	"testing"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/anilist"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

func media(id int64, romaji, english string, format string, synonyms ...string) anilist.Media {
	return anilist.Media{
		ID:       id,
		Title:    anilist.Title{Romaji: romaji, English: english},
		Synonyms: synonyms,
		Format:   format,
	}
}

func TestScoreExactPrimaryTitle(t *testing.T) {
	m := media(185660, "CAT'S♥EYE", "Cat's Eye", anilist.FormatONA)
	score, synonym := Score("Cat's Eye (2025)", m)
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}
	if synonym != "" {
		t.Errorf("synonym = %q, want empty for primary-title win", synonym)
	}
}

func TestScoreSynonymOutscoresPrimary(t *testing.T) {
	m := media(1, "Totally Different Name", "", anilist.FormatTV, "Signé Cat's Eye")
	score, synonym := Score("Signe Cat's Eye", m)
	if score != 1.0 {
		t.Errorf("score = %v, want 1.0", score)
	}
	if synonym != "Signé Cat's Eye" {
		t.Errorf("synonym = %q, want the winning synonym", synonym)
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	m := media(1, "Anything", "", anilist.FormatTV)
	if score, _ := Score("  ( 2025 ) ", m); score != 0 {
		t.Errorf("score = %v, want 0 for empty normalized query", score)
	}
}

func TestSelectPicksHighestScore(t *testing.T) {
	candidates := []anilist.Media{
		media(10, "Frieren", "Frieren: Beyond Journey's End", anilist.FormatTV),
		media(20, "Sousou no Frieren", "", anilist.FormatTV),
	}
	result := Select(logging.NewNop(), "Sousou no Frieren", candidates, Options{MinConfidence: 0.6})
	if !result.Matched() {
		t.Fatal("expected a match")
	}
	if result.Media.ID != 20 {
		t.Errorf("selected id = %d, want 20", result.Media.ID)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.Confidence)
	}
}

func TestSelectBelowThresholdRejectsAll(t *testing.T) {
	candidates := []anilist.Media{
		media(1, "Completely Unrelated Show", "", anilist.FormatTV),
	}
	result := Select(logging.NewNop(), "Cowboy Bebop", candidates, Options{MinConfidence: 0.6})
	if result.Matched() {
		t.Errorf("expected rejection, got id %d at %v", result.Media.ID, result.Confidence)
	}
}

func TestSelectTieBreakPrefersAcceptedFormat(t *testing.T) {
	candidates := []anilist.Media{
		media(5, "One Piece", "", anilist.FormatMovie),
		media(9, "One Piece", "", anilist.FormatTV),
	}
	opts := Options{
		MinConfidence:   0.6,
		AcceptedFormats: []string{anilist.FormatTV, anilist.FormatTVShort},
	}
	result := Select(logging.NewNop(), "One Piece", candidates, opts)
	if !result.Matched() {
		t.Fatal("expected a match")
	}
	if result.Media.ID != 9 {
		t.Errorf("selected id = %d, want the TV entry 9", result.Media.ID)
	}
}

func TestSelectTieBreakPrefersLowerID(t *testing.T) {
	candidates := []anilist.Media{
		media(300, "Gintama", "", anilist.FormatTV),
		media(100, "Gintama", "", anilist.FormatTV),
	}
	result := Select(logging.NewNop(), "Gintama", candidates, Options{MinConfidence: 0.6})
	if !result.Matched() {
		t.Fatal("expected a match")
	}
	if result.Media.ID != 100 {
		t.Errorf("selected id = %d, want 100", result.Media.ID)
	}
}

func TestSelectDeterministicAcrossOrderings(t *testing.T) {
	forward := []anilist.Media{
		media(100, "Gintama", "", anilist.FormatTV),
		media(300, "Gintama", "", anilist.FormatTV),
		media(7, "Gintama.", "", anilist.FormatTV),
	}
	reversed := []anilist.Media{forward[2], forward[1], forward[0]}

	a := Select(logging.NewNop(), "Gintama", forward, Options{MinConfidence: 0.6})
	b := Select(logging.NewNop(), "Gintama", reversed, Options{MinConfidence: 0.6})
	if !a.Matched() || !b.Matched() {
		t.Fatal("expected matches for both orderings")
	}
	if a.Media.ID != b.Media.ID {
		t.Errorf("ordering changed the winner: %d vs %d", a.Media.ID, b.Media.ID)
	}
}

func TestSelectNoCandidates(t *testing.T) {
	result := Select(logging.NewNop(), "Anything", nil, Options{MinConfidence: 0.6})
	if result.Matched() {
		t.Error("expected no match for empty candidate list")
	}
}
