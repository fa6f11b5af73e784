package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"sprint-quiz-service/internal/domain"
)

func TestSubmissionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore()
	team, _ := store.RegisterTeam(ctx, domain.Team{ID: "t1", DisplayName: "Falcons"})
	if team.Code != "A-00" {
		t.Fatalf("expected first team code A-00, got %s", team.Code)
	}

	if done, _ := store.HasSubmitted(ctx, "t1", "act-1"); done {
		t.Fatalf("expected no submission yet")
	}

	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, domain.Submission{TeamID: "t1", ActivityID: "act-1", EventID: "evt-1", Score: 4, CreatedAt: at}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Record(ctx, domain.Submission{TeamID: "t1", ActivityID: "act-2", EventID: "evt-1", Score: 3, CreatedAt: at.Add(time.Minute)}); err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if done, _ := store.HasSubmitted(ctx, "t1", "act-1"); !done {
		t.Fatalf("expected submission present")
	}

	err := store.Record(ctx, domain.Submission{TeamID: "t1", ActivityID: "act-1", EventID: "evt-1", Score: 9})
	if !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	scores, _ := store.TeamScores(ctx, "evt-1")
	if len(scores) != 1 {
		t.Fatalf("expected one team score, got %d", len(scores))
	}
	got := scores[0]
	if got.Total != 7 || got.TeamCode != "A-00" || got.DisplayName != "Falcons" {
		t.Fatalf("unexpected score %+v", got)
	}
	if got.ActivityScores["act-1"] != 4 || got.ActivityScores["act-2"] != 3 {
		t.Fatalf("unexpected activity scores %v", got.ActivityScores)
	}
	if !got.LastUpdated.Equal(at.Add(time.Minute)) {
		t.Fatalf("expected last update from latest submission, got %v", got.LastUpdated)
	}

	if other, _ := store.TeamScores(ctx, "evt-2"); len(other) != 0 {
		t.Fatalf("expected no scores for other event, got %v", other)
	}
}

func TestSubmissionStoreUnknownTeam(t *testing.T) {
	store := NewSubmissionStore(domain.Team{ID: "t1", Code: "A-00"})
	if _, err := store.GetTeam(context.Background(), "t2"); !errors.Is(err, domain.ErrTeamNotFound) {
		t.Fatalf("expected team not found, got %v", err)
	}
	if _, err := store.GetTeam(context.Background(), "t1"); err != nil {
		t.Fatalf("expected known team, got %v", err)
	}
}

func TestRegisterTeamKeepsExistingCode(t *testing.T) {
	ctx := context.Background()
	store := NewSubmissionStore(domain.Team{ID: "t0", Code: "A-00", DisplayName: "Seeded"})

	first, _ := store.RegisterTeam(ctx, domain.Team{ID: "t1", DisplayName: "Falcons"})
	again, _ := store.RegisterTeam(ctx, domain.Team{ID: "t1", DisplayName: "Falcons II"})
	next, _ := store.RegisterTeam(ctx, domain.Team{ID: "t2", DisplayName: "Owls"})

	if first.Code != "A-01" || again.Code != "A-01" {
		t.Fatalf("expected re-registration to keep A-01, got %s then %s", first.Code, again.Code)
	}
	if next.Code != "A-02" {
		t.Fatalf("expected next team A-02, got %s", next.Code)
	}
	got, _ := store.GetTeam(ctx, "t1")
	if got.DisplayName != "Falcons II" {
		t.Fatalf("expected rename to stick, got %+v", got)
	}
}
