package app

import (
	"sort"
	"time"

	"sprint-quiz-service/internal/domain"
)

// BuildLeaderboard ranks team scores: higher total first, then whoever reached
// it earlier, then display name.
func BuildLeaderboard(eventID string, scores []domain.TeamScore, now time.Time) domain.Leaderboard {
	sorted := make([]domain.TeamScore, len(scores))
	copy(sorted, scores)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		if !sorted[i].LastUpdated.Equal(sorted[j].LastUpdated) {
			return sorted[i].LastUpdated.Before(sorted[j].LastUpdated)
		}
		return sorted[i].DisplayName < sorted[j].DisplayName
	})

	entries := make([]domain.LeaderboardEntry, 0, len(sorted))
	for i, s := range sorted {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:           i + 1,
			TeamID:         s.TeamID,
			TeamCode:       s.TeamCode,
			TeamName:       s.DisplayName,
			Score:          s.Total,
			ActivityScores: s.ActivityScores,
			LastUpdated:    s.LastUpdated,
		})
	}

	return domain.Leaderboard{
		EventID:   eventID,
		Entries:   entries,
		UpdatedAt: now,
	}
}

// teamView drops per-activity breakdowns, which only admins see.
func teamView(lb domain.Leaderboard) domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, len(lb.Entries))
	for i, e := range lb.Entries {
		e.ActivityScores = nil
		entries[i] = e
	}
	lb.Entries = entries
	return lb
}
