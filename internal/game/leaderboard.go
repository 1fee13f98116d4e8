package game

import (
	"math/rand"
	"sort"

	"arquiz-service/internal/domain"
)

const (
	defaultPlayerName     = "Player 1"
	minOpponentSeconds    = 600
	opponentSecondsSpread = 1320
)

var opponentNames = []string{"Player 2", "Player 3", "Player 4"}

// syntheticScore picks a multiple of step in [0, score-step). Players below one step get 0.
func syntheticScore(rnd *rand.Rand, score, step int) int {
	if step <= 0 || score < step {
		return 0
	}
	span := score - step
	if span <= 0 {
		return 0
	}
	return rnd.Intn(span) / step * step
}

func syntheticSeconds(rnd *rand.Rand) int {
	return minOpponentSeconds + rnd.Intn(opponentSecondsSpread)
}

// synthesizeOpponents fills the game-over board with placeholder players ranked by
// score descending, then time ascending.
func synthesizeOpponents(rnd *rand.Rand, score, step int) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(opponentNames))
	for _, name := range opponentNames {
		entries = append(entries, domain.LeaderboardEntry{
			Name:        name,
			Score:       syntheticScore(rnd, score, step),
			TimeSeconds: syntheticSeconds(rnd),
			Synthetic:   true,
		})
	}
	rankEntries(entries)
	return entries
}

func rankEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].TimeSeconds < entries[j].TimeSeconds
	})
}

// buildLeaderboard puts the real player first regardless of the opponents' scores.
func buildLeaderboard(player domain.LeaderboardEntry, opponents []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(opponents)+1)
	player.Rank = 1
	entries = append(entries, player)
	for i, opponent := range opponents {
		opponent.Rank = i + 2
		entries = append(entries, opponent)
	}
	return entries
}
