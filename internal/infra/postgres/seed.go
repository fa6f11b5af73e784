package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sprint-quiz-service/internal/domain"
)

// Seed upserts events and activities with their questions.
func Seed(ctx context.Context, pool *pgxpool.Pool, events []domain.Event, activities []domain.Activity) error {
	return pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		for _, e := range events {
			_, err := tx.Exec(ctx, `
				INSERT INTO events (id, name, is_open, leaderboard_visibility) VALUES ($1, $2, $3, $4)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, is_open = EXCLUDED.is_open,
					leaderboard_visibility = EXCLUDED.leaderboard_visibility`,
				e.ID, e.Name, e.IsOpen, string(e.LeaderboardVisibility))
			if err != nil {
				return fmt.Errorf("seed event %s: %w", e.ID, err)
			}
		}
		for _, a := range activities {
			_, err := tx.Exec(ctx, `
				INSERT INTO activities (id, event_id, title, description, sort_order, is_frozen)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, description = EXCLUDED.description,
					sort_order = EXCLUDED.sort_order, is_frozen = EXCLUDED.is_frozen`,
				a.ID, a.EventID, a.Title, a.Description, a.Order, a.IsFrozen)
			if err != nil {
				return fmt.Errorf("seed activity %s: %w", a.ID, err)
			}
			for _, q := range a.Questions {
				_, err := tx.Exec(ctx, `
					INSERT INTO questions (id, activity_id, type, prompt, options, points, sort_order, answer_key, explanation)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
					ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, prompt = EXCLUDED.prompt,
						options = EXCLUDED.options, points = EXCLUDED.points, sort_order = EXCLUDED.sort_order,
						answer_key = EXCLUDED.answer_key, explanation = EXCLUDED.explanation`,
					q.ID, a.ID, string(q.Type), jsonArg(q.Prompt), jsonArg(q.Options), q.Points, q.Order,
					jsonArg(q.AnswerKey), jsonArg(q.Explanation))
				if err != nil {
					return fmt.Errorf("seed question %s: %w", q.ID, err)
				}
			}
		}
		return nil
	})
}

// jsonArg maps an absent payload to SQL NULL.
func jsonArg(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}
