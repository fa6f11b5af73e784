package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sprint-quiz-service/internal/domain"
)

// SubmissionStore persists submissions and running team totals.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

func (s *SubmissionStore) GetTeam(ctx context.Context, teamID string) (domain.Team, error) {
	var t domain.Team
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, display_name FROM teams WHERE id=$1`, teamID,
	).Scan(&t.ID, &t.Code, &t.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("load team: %w", err)
	}
	return t, nil
}

func (s *SubmissionStore) HasSubmitted(ctx context.Context, teamID, activityID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM submissions WHERE team_id=$1 AND activity_id=$2)`, teamID, activityID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check submission: %w", err)
	}
	return exists, nil
}

// Record inserts the submission and folds its score into the team total in one transaction.
func (s *SubmissionStore) Record(ctx context.Context, sub domain.Submission) error {
	answers, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	breakdown, err := json.Marshal(map[string]int{sub.ActivityID: sub.Score})
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}

	return s.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO submissions (team_id, activity_id, event_id, answers, score, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (team_id, activity_id) DO NOTHING`,
			sub.TeamID, sub.ActivityID, sub.EventID, string(answers), sub.Score, sub.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrAlreadySubmitted
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO scores (event_id, team_id, total, activity_scores, last_updated)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id, team_id) DO UPDATE SET
				total = scores.total + EXCLUDED.total,
				activity_scores = scores.activity_scores || EXCLUDED.activity_scores,
				last_updated = EXCLUDED.last_updated`,
			sub.EventID, sub.TeamID, sub.Score, string(breakdown), sub.CreatedAt)
		if err != nil {
			return fmt.Errorf("update score: %w", err)
		}
		return nil
	})
}

func (s *SubmissionStore) TeamScores(ctx context.Context, eventID string) ([]domain.TeamScore, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.team_id, t.code, t.display_name, s.total, s.activity_scores, s.last_updated
		FROM scores s JOIN teams t ON t.id = s.team_id
		WHERE s.event_id=$1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TeamScore, 0)
	for rows.Next() {
		var (
			ts        domain.TeamScore
			breakdown []byte
		)
		if err := rows.Scan(&ts.TeamID, &ts.TeamCode, &ts.DisplayName, &ts.Total, &breakdown, &ts.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		ts.ActivityScores = make(map[string]int)
		if len(breakdown) > 0 {
			if err := json.Unmarshal(breakdown, &ts.ActivityScores); err != nil {
				return nil, fmt.Errorf("decode breakdown: %w", err)
			}
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

// RegisterTeam stores a team. A new team without a code gets the next one;
// a known team keeps its code.
func (s *SubmissionStore) RegisterTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	if team.Code == "" {
		err := s.pool.QueryRow(ctx, `SELECT code FROM teams WHERE id=$1`, team.ID).Scan(&team.Code)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return domain.Team{}, fmt.Errorf("load team: %w", err)
		}
	}
	if team.Code == "" {
		var n int
		if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM teams`).Scan(&n); err != nil {
			return domain.Team{}, fmt.Errorf("count teams: %w", err)
		}
		team.Code = domain.TeamCode(n)
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO teams (id, code, display_name) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
		 RETURNING code`,
		team.ID, team.Code, team.DisplayName).Scan(&team.Code)
	if err != nil {
		return domain.Team{}, fmt.Errorf("insert team: %w", err)
	}
	return team, nil
}
