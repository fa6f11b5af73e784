package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"sprint-quiz-service/internal/domain"
	"sprint-quiz-service/internal/metrics"
	"sprint-quiz-service/internal/scoring"
)

// ActivityRepository loads activities with their ordered questions, and
// events (from cache/backing store).
type ActivityRepository interface {
	GetActivity(ctx context.Context, activityID string) (domain.Activity, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
}

// SubmissionStore persists scored submissions and team totals.
// Record must store the submission and add its score to the team's event
// total atomically, and return domain.ErrAlreadySubmitted when the team has
// already submitted the activity.
type SubmissionStore interface {
	GetTeam(ctx context.Context, teamID string) (domain.Team, error)
	HasSubmitted(ctx context.Context, teamID, activityID string) (bool, error)
	Record(ctx context.Context, sub domain.Submission) error
	TeamScores(ctx context.Context, eventID string) ([]domain.TeamScore, error)
}

// SubmissionService contains the submission and leaderboard use cases.
type SubmissionService struct {
	activities  ActivityRepository
	submissions SubmissionStore
	hub         *Hub
	log         *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time

	// publishMu orders snapshot reads with hub delivery, so the last board
	// delivered always reflects the last recorded submission.
	publishMu sync.Mutex
}

// Option customizes a SubmissionService.
type Option func(*SubmissionService)

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SubmissionService) { s.now = now }
}

// WithMetrics records submission outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SubmissionService) { s.metrics = m }
}

func NewSubmissionService(activities ActivityRepository, submissions SubmissionStore, log *zap.Logger, opts ...Option) *SubmissionService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SubmissionService{
		activities:  activities,
		submissions: submissions,
		hub:         NewHub(),
		log:         log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit scores a team's answers for an activity, records the result and
// pushes the refreshed leaderboard to subscribers. Each team may submit an
// activity once, and only while the activity is frozen and its event open.
func (s *SubmissionService) Submit(ctx context.Context, teamID, activityID string, answers map[string]json.RawMessage) (scoring.SubmissionResult, error) {
	log := s.log.With(zap.String("team_id", teamID), zap.String("activity_id", activityID))

	if teamID == "" {
		return scoring.SubmissionResult{}, domain.ErrTeamNotFound
	}
	if _, err := s.submissions.GetTeam(ctx, teamID); err != nil {
		s.countOutcome(err)
		return scoring.SubmissionResult{}, err
	}

	activity, err := s.activities.GetActivity(ctx, activityID)
	if err != nil {
		s.countOutcome(err)
		return scoring.SubmissionResult{}, err
	}
	if !activity.IsFrozen {
		s.countOutcome(domain.ErrActivityNotFrozen)
		return scoring.SubmissionResult{}, domain.ErrActivityNotFrozen
	}

	event, err := s.activities.GetEvent(ctx, activity.EventID)
	if err != nil {
		s.countOutcome(err)
		return scoring.SubmissionResult{}, err
	}
	if !event.IsOpen {
		s.countOutcome(domain.ErrEventClosed)
		return scoring.SubmissionResult{}, domain.ErrEventClosed
	}

	done, err := s.submissions.HasSubmitted(ctx, teamID, activityID)
	if err != nil {
		return scoring.SubmissionResult{}, err
	}
	if done {
		s.countOutcome(domain.ErrAlreadySubmitted)
		return scoring.SubmissionResult{}, domain.ErrAlreadySubmitted
	}

	result := scoring.ScoreSubmission(activity.Questions, answers)

	err = s.submissions.Record(ctx, domain.Submission{
		TeamID:     teamID,
		ActivityID: activityID,
		EventID:    event.ID,
		Answers:    answers,
		Score:      result.Total,
		CreatedAt:  s.now(),
	})
	if err != nil {
		s.countOutcome(err)
		if !errors.Is(err, domain.ErrAlreadySubmitted) {
			log.Error("record submission", zap.Error(err))
		}
		return scoring.SubmissionResult{}, err
	}

	s.observe(activity.Questions, result)
	log.Info("submission scored",
		zap.String("event_id", event.ID),
		zap.Int("score", result.Total),
		zap.Int("questions", len(result.PerQuestion)),
	)

	s.publish(ctx, event.ID)
	return result, nil
}

// Leaderboard returns the ranked scoreboard of an event. Teams only see it
// once the event exposes it to them, and never see per-activity scores.
func (s *SubmissionService) Leaderboard(ctx context.Context, eventID string, viewer domain.Role) (domain.Leaderboard, error) {
	if err := s.checkVisible(ctx, eventID, viewer); err != nil {
		return domain.Leaderboard{}, err
	}

	lb, err := s.snapshot(ctx, eventID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	if viewer != domain.RoleAdmin {
		lb = teamView(lb)
	}
	return lb, nil
}

// Subscribe returns a channel that receives leaderboard updates for an event.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *SubmissionService) Subscribe(ctx context.Context, eventID string, viewer domain.Role) (<-chan domain.Leaderboard, func(), error) {
	if err := s.checkVisible(ctx, eventID, viewer); err != nil {
		return nil, nil, err
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	initial, err := s.snapshot(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(eventID, teamView(initial))
	return ch, cancel, nil
}

func (s *SubmissionService) checkVisible(ctx context.Context, eventID string, viewer domain.Role) error {
	event, err := s.activities.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if viewer != domain.RoleAdmin && event.LeaderboardVisibility != domain.VisibilityTeams {
		return domain.ErrLeaderboardHidden
	}
	return nil
}

func (s *SubmissionService) snapshot(ctx context.Context, eventID string) (domain.Leaderboard, error) {
	scores, err := s.submissions.TeamScores(ctx, eventID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return BuildLeaderboard(eventID, scores, s.now()), nil
}

func (s *SubmissionService) publish(ctx context.Context, eventID string) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if s.hub.Subscribers(eventID) == 0 {
		return
	}
	lb, err := s.snapshot(ctx, eventID)
	if err != nil {
		s.log.Warn("leaderboard refresh", zap.String("event_id", eventID), zap.Error(err))
		return
	}
	s.hub.Publish(teamView(lb))
}

func (s *SubmissionService) countOutcome(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "error"
	switch {
	case errors.Is(err, domain.ErrAlreadySubmitted):
		outcome = "duplicate"
	case errors.Is(err, domain.ErrActivityNotFrozen), errors.Is(err, domain.ErrEventClosed):
		outcome = "rejected"
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrTeamNotFound), errors.Is(err, domain.ErrEventNotFound):
		outcome = "not_found"
	}
	s.metrics.Submissions.WithLabelValues(outcome).Inc()
}

func (s *SubmissionService) observe(questions []domain.Question, result scoring.SubmissionResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.Submissions.WithLabelValues("accepted").Inc()
	s.metrics.SubmissionScore.Observe(float64(result.Total))
	for i, out := range result.PerQuestion {
		s.metrics.QuestionPoints.WithLabelValues(string(questions[i].Type), strconv.FormatBool(out.Correct)).Inc()
	}
}
