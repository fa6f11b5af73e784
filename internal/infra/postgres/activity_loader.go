package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"sprint-quiz-service/internal/domain"
)

// ActivityLoader loads events, activities and their JSONB question payloads from Postgres.
type ActivityLoader struct {
	pool *pgxpool.Pool
}

func NewActivityLoader(pool *pgxpool.Pool) *ActivityLoader {
	return &ActivityLoader{pool: pool}
}

func (l *ActivityLoader) LoadEvent(ctx context.Context, eventID string) (domain.Event, error) {
	var e domain.Event
	var visibility string
	err := l.pool.QueryRow(ctx,
		`SELECT id, name, is_open, leaderboard_visibility FROM events WHERE id=$1`, eventID,
	).Scan(&e.ID, &e.Name, &e.IsOpen, &visibility)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, domain.ErrEventNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("load event: %w", err)
	}
	e.LeaderboardVisibility = domain.LeaderboardVisibility(visibility)
	return e, nil
}

func (l *ActivityLoader) LoadActivity(ctx context.Context, activityID string) (domain.Activity, error) {
	var a domain.Activity
	err := l.pool.QueryRow(ctx,
		`SELECT id, event_id, title, description, sort_order, is_frozen FROM activities WHERE id=$1`, activityID,
	).Scan(&a.ID, &a.EventID, &a.Title, &a.Description, &a.Order, &a.IsFrozen)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if err != nil {
		return domain.Activity{}, fmt.Errorf("load activity: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, type, prompt, options, points, sort_order, answer_key, explanation
		FROM questions WHERE activity_id=$1 ORDER BY sort_order, id`, activityID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q                                    domain.Question
			qType                                string
			prompt, options, answerKey, explains []byte
		)
		if err := rows.Scan(&q.ID, &qType, &prompt, &options, &q.Points, &q.Order, &answerKey, &explains); err != nil {
			return domain.Activity{}, fmt.Errorf("scan question: %w", err)
		}
		q.ActivityID = a.ID
		q.Type = domain.QuestionType(qType)
		q.Prompt = prompt
		q.Options = options
		q.AnswerKey = answerKey
		q.Explanation = explains
		a.Questions = append(a.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Activity{}, fmt.Errorf("load questions: %w", err)
	}
	return a, nil
}

// SetActivityFrozen releases (or withdraws) an activity for submissions.
func (l *ActivityLoader) SetActivityFrozen(ctx context.Context, activityID string, frozen bool) (domain.Activity, error) {
	tag, err := l.pool.Exec(ctx, `UPDATE activities SET is_frozen=$2 WHERE id=$1`, activityID, frozen)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	return l.LoadActivity(ctx, activityID)
}

// UpdateEvent applies the non-nil switches of update.
func (l *ActivityLoader) UpdateEvent(ctx context.Context, eventID string, update domain.EventUpdate) (domain.Event, error) {
	var visibility *string
	if update.LeaderboardVisibility != nil {
		v := string(*update.LeaderboardVisibility)
		visibility = &v
	}

	var e domain.Event
	var current string
	err := l.pool.QueryRow(ctx, `
		UPDATE events SET
			is_open = COALESCE($2, is_open),
			leaderboard_visibility = COALESCE($3, leaderboard_visibility)
		WHERE id=$1
		RETURNING id, name, is_open, leaderboard_visibility`,
		eventID, update.IsOpen, visibility,
	).Scan(&e.ID, &e.Name, &e.IsOpen, &current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Event{}, domain.ErrEventNotFound
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("update event: %w", err)
	}
	e.LeaderboardVisibility = domain.LeaderboardVisibility(current)
	return e, nil
}
