package usecase

import (
	"reflect"
	"testing"
)

func fairnessCandidate(id, artisanID string, distance float32) candidate {
	return candidate{
		card:     ProductCard{ID: id, ArtisanID: artisanID},
		distance: distance,
	}
}

func candidateIDs(candidates []candidate) []string {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.card.ID)
	}
	return ids
}

func TestRerankRoundRobin(t *testing.T) {
	candidates := []candidate{
		fairnessCandidate("a1", "art-a", 0.1),
		fairnessCandidate("a2", "art-a", 0.2),
		fairnessCandidate("b1", "art-b", 0.3),
		fairnessCandidate("a3", "art-a", 0.4),
		fairnessCandidate("c1", "art-c", 0.5),
	}

	got := candidateIDs(rerankByArtisanDiversity(candidates))
	// Раунд 1: лучшие кандидаты мастеров в порядке первого появления,
	// дальше вторые и третьи.
	want := []string{"a1", "b1", "c1", "a2", "a3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRerankAllUniqueArtisansUnchanged(t *testing.T) {
	candidates := []candidate{
		fairnessCandidate("a", "art-a", 0.1),
		fairnessCandidate("b", "art-b", 0.2),
		fairnessCandidate("c", "art-c", 0.3),
	}

	got := candidateIDs(rerankByArtisanDiversity(candidates))
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRerankPreservesMultiset(t *testing.T) {
	candidates := []candidate{
		fairnessCandidate("a1", "art-a", 0.1),
		fairnessCandidate("a2", "art-a", 0.2),
		fairnessCandidate("b1", "art-b", 0.3),
		fairnessCandidate("b2", "art-b", 0.4),
	}

	result := rerankByArtisanDiversity(candidates)
	if len(result) != len(candidates) {
		t.Fatalf("length changed: got %d, want %d", len(result), len(candidates))
	}

	seen := map[string]int{}
	for _, c := range result {
		seen[c.card.ID]++
	}
	for _, c := range candidates {
		if seen[c.card.ID] != 1 {
			t.Errorf("candidate %s: seen %d times", c.card.ID, seen[c.card.ID])
		}
	}
}

func TestRerankFewCandidates(t *testing.T) {
	single := []candidate{fairnessCandidate("a", "art-a", 0.1)}
	if got := rerankByArtisanDiversity(single); len(got) != 1 || got[0].card.ID != "a" {
		t.Errorf("single candidate must pass through, got %v", candidateIDs(got))
	}

	if got := rerankByArtisanDiversity(nil); len(got) != 0 {
		t.Errorf("empty input must stay empty, got %v", candidateIDs(got))
	}
}
