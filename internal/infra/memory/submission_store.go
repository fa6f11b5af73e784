package memory

import (
	"context"
	"sync"

	"sprint-quiz-service/internal/domain"
)

// SubmissionStore is an in-memory implementation of app.SubmissionStore.
type SubmissionStore struct {
	mu          sync.RWMutex
	teams       map[string]domain.Team
	submissions map[submissionKey]domain.Submission
	scores      map[scoreKey]*domain.TeamScore
	nextCode    int
}

type submissionKey struct{ teamID, activityID string }

type scoreKey struct{ teamID, eventID string }

func NewSubmissionStore(teams ...domain.Team) *SubmissionStore {
	s := &SubmissionStore{
		teams:       make(map[string]domain.Team, len(teams)),
		submissions: make(map[submissionKey]domain.Submission),
		scores:      make(map[scoreKey]*domain.TeamScore),
	}
	for _, t := range teams {
		s.teams[t.ID] = t
	}
	s.nextCode = len(s.teams)
	return s
}

// RegisterTeam adds or renames a team. A new team without a code gets the
// next one; a known team keeps its code.
func (s *SubmissionStore) RegisterTeam(_ context.Context, team domain.Team) (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if team.Code == "" {
		if existing, ok := s.teams[team.ID]; ok {
			team.Code = existing.Code
		} else {
			team.Code = domain.TeamCode(s.nextCode)
		}
	}
	if _, ok := s.teams[team.ID]; !ok {
		s.nextCode++
	}
	s.teams[team.ID] = team
	return team, nil
}

func (s *SubmissionStore) GetTeam(_ context.Context, teamID string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.teams[teamID]; ok {
		return t, nil
	}
	return domain.Team{}, domain.ErrTeamNotFound
}

func (s *SubmissionStore) HasSubmitted(_ context.Context, teamID, activityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.submissions[submissionKey{teamID, activityID}]
	return ok, nil
}

func (s *SubmissionStore) Record(_ context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := submissionKey{sub.TeamID, sub.ActivityID}
	if _, ok := s.submissions[key]; ok {
		return domain.ErrAlreadySubmitted
	}
	s.submissions[key] = sub

	sk := scoreKey{sub.TeamID, sub.EventID}
	score, ok := s.scores[sk]
	if !ok {
		team := s.teams[sub.TeamID]
		score = &domain.TeamScore{
			TeamID:         sub.TeamID,
			TeamCode:       team.Code,
			DisplayName:    team.DisplayName,
			ActivityScores: make(map[string]int),
		}
		s.scores[sk] = score
	}
	score.Total += sub.Score
	score.ActivityScores[sub.ActivityID] = sub.Score
	score.LastUpdated = sub.CreatedAt
	return nil
}

func (s *SubmissionStore) TeamScores(_ context.Context, eventID string) ([]domain.TeamScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TeamScore, 0)
	for key, score := range s.scores {
		if key.eventID != eventID {
			continue
		}
		cp := *score
		cp.ActivityScores = make(map[string]int, len(score.ActivityScores))
		for k, v := range score.ActivityScores {
			cp.ActivityScores[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}
