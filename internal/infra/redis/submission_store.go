package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"sprint-quiz-service/internal/domain"
)

// SubmissionStore keeps teams, submissions and team totals in Redis so that
// several instances can share one scoreboard.
//
//	HSET team:{teamID} code .. name ..
//	SET  submission:{teamID}:{activityID} {json}   (NX guards duplicates)
//	HSET score:{eventID}:{teamID} total .. updated .. act:{activityID} ..
//	SADD event:{eventID}:teams {teamID}
type SubmissionStore struct {
	client *redis.Client
}

func NewSubmissionStore(client *redis.Client) *SubmissionStore {
	return &SubmissionStore{client: client}
}

// RegisterTeam stores a team. A new team without a code gets the next one;
// a known team keeps its code.
func (s *SubmissionStore) RegisterTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	if team.Code == "" {
		code, err := s.client.HGet(ctx, teamKey(team.ID), "code").Result()
		if err != nil && !isNil(err) {
			return domain.Team{}, fmt.Errorf("load team: %w", err)
		}
		team.Code = code
	}
	if team.Code == "" {
		n, err := s.client.Incr(ctx, "team:seq").Result()
		if err != nil {
			return domain.Team{}, fmt.Errorf("next team code: %w", err)
		}
		team.Code = domain.TeamCode(int(n - 1))
	}
	if err := s.client.HSet(ctx, teamKey(team.ID), "code", team.Code, "name", team.DisplayName).Err(); err != nil {
		return domain.Team{}, fmt.Errorf("store team: %w", err)
	}
	return team, nil
}

func (s *SubmissionStore) GetTeam(ctx context.Context, teamID string) (domain.Team, error) {
	fields, err := s.client.HGetAll(ctx, teamKey(teamID)).Result()
	if err != nil {
		return domain.Team{}, fmt.Errorf("load team: %w", err)
	}
	if len(fields) == 0 {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return domain.Team{ID: teamID, Code: fields["code"], DisplayName: fields["name"]}, nil
}

func (s *SubmissionStore) HasSubmitted(ctx context.Context, teamID, activityID string) (bool, error) {
	n, err := s.client.Exists(ctx, submissionKey(teamID, activityID)).Result()
	if err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return n > 0, nil
}

func (s *SubmissionStore) Record(ctx context.Context, sub domain.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	ok, err := s.client.SetNX(ctx, submissionKey(sub.TeamID, sub.ActivityID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store submission: %w", err)
	}
	if !ok {
		return domain.ErrAlreadySubmitted
	}

	key := scoreKey(sub.EventID, sub.TeamID)
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "total", int64(sub.Score))
	pipe.HSet(ctx, key,
		"act:"+sub.ActivityID, sub.Score,
		"updated", sub.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.SAdd(ctx, eventTeamsKey(sub.EventID), sub.TeamID)
	if _, err := pipe.Exec(ctx); err != nil {
		_ = s.client.Del(ctx, submissionKey(sub.TeamID, sub.ActivityID)).Err()
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

func (s *SubmissionStore) TeamScores(ctx context.Context, eventID string) ([]domain.TeamScore, error) {
	teamIDs, err := s.client.SMembers(ctx, eventTeamsKey(eventID)).Result()
	if err != nil && !isNil(err) {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	out := make([]domain.TeamScore, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		fields, err := s.client.HGetAll(ctx, scoreKey(eventID, teamID)).Result()
		if err != nil {
			return nil, fmt.Errorf("load score: %w", err)
		}
		team, err := s.GetTeam(ctx, teamID)
		if err != nil {
			team = domain.Team{ID: teamID}
		}
		out = append(out, parseScore(team, fields))
	}
	return out, nil
}

func parseScore(team domain.Team, fields map[string]string) domain.TeamScore {
	score := domain.TeamScore{
		TeamID:         team.ID,
		TeamCode:       team.Code,
		DisplayName:    team.DisplayName,
		ActivityScores: make(map[string]int),
	}
	for field, value := range fields {
		switch {
		case field == "total":
			score.Total, _ = strconv.Atoi(value)
		case field == "updated":
			score.LastUpdated, _ = time.Parse(time.RFC3339Nano, value)
		case strings.HasPrefix(field, "act:"):
			n, _ := strconv.Atoi(value)
			score.ActivityScores[strings.TrimPrefix(field, "act:")] = n
		}
	}
	return score
}

func teamKey(teamID string) string {
	return "team:" + teamID
}

func submissionKey(teamID, activityID string) string {
	return "submission:" + teamID + ":" + activityID
}

func scoreKey(eventID, teamID string) string {
	return "score:" + eventID + ":" + teamID
}

func eventTeamsKey(eventID string) string {
	return "event:" + eventID + ":teams"
}
