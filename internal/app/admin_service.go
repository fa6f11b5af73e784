package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sprint-quiz-service/internal/domain"
)

// ContentStore changes the admin switches of activities and events.
type ContentStore interface {
	SetActivityFrozen(ctx context.Context, activityID string, frozen bool) (domain.Activity, error)
	UpdateEvent(ctx context.Context, eventID string, update domain.EventUpdate) (domain.Event, error)
}

// ActivityCache drops cached activity content.
type ActivityCache interface {
	Invalidate(ctx context.Context, activityID string) error
}

// TeamRegistry stores teams and hands out their codes.
type TeamRegistry interface {
	RegisterTeam(ctx context.Context, team domain.Team) (domain.Team, error)
}

// AdminService holds the event operator use cases.
type AdminService struct {
	content ContentStore
	cache   ActivityCache
	teams   TeamRegistry
	log     *zap.Logger
	newID   func() string
}

func NewAdminService(content ContentStore, cache ActivityCache, teams TeamRegistry, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{
		content: content,
		cache:   cache,
		teams:   teams,
		log:     log,
		newID:   uuid.NewString,
	}
}

// SetActivityFrozen toggles whether teams may submit an activity and drops
// the cached copy so the next submission sees the change.
func (s *AdminService) SetActivityFrozen(ctx context.Context, activityID string, frozen bool) (domain.Activity, error) {
	activity, err := s.content.SetActivityFrozen(ctx, activityID, frozen)
	if err != nil {
		return domain.Activity{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, activityID); err != nil {
			s.log.Warn("activity cache invalidation", zap.String("activity_id", activityID), zap.Error(err))
		}
	}
	s.log.Info("activity updated", zap.String("activity_id", activityID), zap.Bool("frozen", frozen))
	return activity, nil
}

func (s *AdminService) UpdateEvent(ctx context.Context, eventID string, update domain.EventUpdate) (domain.Event, error) {
	if update.LeaderboardVisibility != nil && !update.LeaderboardVisibility.Valid() {
		return domain.Event{}, domain.ErrInvalidVisibility
	}
	event, err := s.content.UpdateEvent(ctx, eventID, update)
	if err != nil {
		return domain.Event{}, err
	}
	s.log.Info("event updated",
		zap.String("event_id", eventID),
		zap.Bool("open", event.IsOpen),
		zap.String("visibility", string(event.LeaderboardVisibility)),
	)
	return event, nil
}

// RegisterTeam creates a team with a fresh id and the next team code.
func (s *AdminService) RegisterTeam(ctx context.Context, displayName string) (domain.Team, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.Team{}, domain.ErrInvalidTeamName
	}
	team, err := s.teams.RegisterTeam(ctx, domain.Team{ID: s.newID(), DisplayName: displayName})
	if err != nil {
		return domain.Team{}, err
	}
	s.log.Info("team registered", zap.String("team_id", team.ID), zap.String("team_code", team.Code))
	return team, nil
}
