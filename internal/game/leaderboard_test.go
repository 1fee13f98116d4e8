package game

import (
	"math/rand"
	"testing"

	"arquiz-service/internal/domain"
)

func TestSyntheticScoreRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		score := syntheticScore(rnd, 25, 10)
		if score != 0 && score != 10 {
			t.Fatalf("expected 0 or 10 for a score of 25, got %d", score)
		}
		seen[score] = true
	}
	if !seen[0] || !seen[10] {
		t.Fatalf("expected both 0 and 10 to occur, got %v", seen)
	}

	for _, score := range []int{0, 5, 9, 10} {
		if got := syntheticScore(rnd, score, 10); got != 0 {
			t.Fatalf("expected 0 for a score of %d, got %d", score, got)
		}
	}

	for i := 0; i < 1000; i++ {
		got := syntheticScore(rnd, 120, 10)
		if got%10 != 0 || got < 0 || got >= 110 {
			t.Fatalf("expected a multiple of 10 below 110, got %d", got)
		}
	}
}

func TestSyntheticSecondsRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		if got := syntheticSeconds(rnd); got < 600 || got >= 1920 {
			t.Fatalf("expected time in [600, 1920), got %d", got)
		}
	}
}

func TestRankEntriesScoreThenTime(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		{Name: "a", Score: 10, TimeSeconds: 900},
		{Name: "b", Score: 30, TimeSeconds: 1500},
		{Name: "c", Score: 10, TimeSeconds: 700},
		{Name: "d", Score: 10, TimeSeconds: 700},
	}
	rankEntries(entries)

	want := []string{"b", "c", "d", "a"}
	for i, name := range want {
		if entries[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, name, entries[i].Name, entries)
		}
	}
}

func TestPlayerAlwaysRanksFirst(t *testing.T) {
	player := domain.LeaderboardEntry{Name: "Player 1", Score: 0, TimeSeconds: 1000}
	opponents := []domain.LeaderboardEntry{
		{Name: "Player 2", Score: 50, Synthetic: true},
		{Name: "Player 3", Score: 20, Synthetic: true},
	}
	entries := buildLeaderboard(player, opponents)
	if entries[0].Name != "Player 1" || entries[0].Rank != 1 {
		t.Fatalf("expected player at rank 1, got %+v", entries[0])
	}
	for i, entry := range entries {
		if entry.Rank != i+1 {
			t.Fatalf("expected rank %d, got %+v", i+1, entry)
		}
	}
}

func TestSynthesizeOpponents(t *testing.T) {
	opponents := synthesizeOpponents(rand.New(rand.NewSource(3)), 5, 10)
	if len(opponents) != 3 {
		t.Fatalf("expected 3 opponents, got %d", len(opponents))
	}
	for i, opponent := range opponents {
		if opponent.Score != 0 || !opponent.Synthetic {
			t.Fatalf("expected synthetic zero score, got %+v", opponent)
		}
		if i > 0 && opponents[i-1].TimeSeconds > opponent.TimeSeconds {
			t.Fatalf("expected ties ordered by time, got %+v", opponents)
		}
	}
}
