package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"sprint-quiz-service/internal/app"
	"sprint-quiz-service/internal/domain"
	"sprint-quiz-service/internal/infra/postgres"
	pgmigrations "sprint-quiz-service/internal/infra/postgres/migrations"
	infraredis "sprint-quiz-service/internal/infra/redis"
)

func TestSubmitEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	event, activity := sampleContent()
	if err := postgres.Seed(ctx, pool, []domain.Event{event}, []domain.Activity{activity}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store := postgres.NewSubmissionStore(pool)
	for _, name := range []string{"Falcons", "Owls"} {
		if _, err := store.RegisterTeam(ctx, domain.Team{ID: strings.ToLower(name), DisplayName: name}); err != nil {
			t.Fatalf("create team: %v", err)
		}
	}
	again, err := store.RegisterTeam(ctx, domain.Team{ID: "owls", DisplayName: "Owls"})
	if err != nil || again.Code != "A-01" {
		t.Fatalf("expected re-registered team to keep A-01, got %+v err=%v", again, err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	activities := infraredis.NewActivityRepository(redisClient, postgres.NewActivityLoader(pool), 5*time.Minute)
	service := app.NewSubmissionService(activities, store, nil)

	res, err := service.Submit(ctx, "owls", "act-1", map[string]json.RawMessage{
		"q1": json.RawMessage(`{"selected":0}`),
		"q2": json.RawMessage(`{"selected":[0,2]}`),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Total != 6 {
		t.Fatalf("expected 6 points, got %d", res.Total)
	}
	if _, err := service.Submit(ctx, "falcons", "act-1", map[string]json.RawMessage{
		"q1": json.RawMessage(`1`),
		"q2": json.RawMessage(`[0,1]`),
	}); err != nil {
		t.Fatalf("submit falcons: %v", err)
	}
	if _, err := service.Submit(ctx, "owls", "act-1", nil); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	lb, err := service.Leaderboard(ctx, "evt-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].TeamID != "owls" || lb.Entries[0].TeamCode != "A-01" {
		t.Fatalf("expected owls leading, got %+v", lb.Entries)
	}
	if lb.Entries[1].Score != 1 || lb.Entries[1].ActivityScores["act-1"] != 1 {
		t.Fatalf("expected falcons with partial credit, got %+v", lb.Entries[1])
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleContent() (domain.Event, domain.Activity) {
	event := domain.Event{ID: "evt-1", Name: "Scout AI Day", IsOpen: true, LeaderboardVisibility: domain.VisibilityAdminOnly}
	activity := domain.Activity{
		ID:       "act-1",
		EventID:  "evt-1",
		Title:    "Sprint 1: Pattern Hunt",
		IsFrozen: true,
		Questions: []domain.Question{
			{
				ID:          "q1",
				Type:        domain.QuestionMCQ,
				Prompt:      json.RawMessage(`{"text":"Triangle+Red?"}`),
				Options:     json.RawMessage(`["A","B","Not sure"]`),
				Points:      2,
				Order:       1,
				AnswerKey:   json.RawMessage(`{"correct":0}`),
				Explanation: json.RawMessage(`{"kind":"decisionRule","ruleText":"Triangle → A"}`),
			},
			{
				ID:        "q2",
				Type:      domain.QuestionCheckbox,
				Prompt:    json.RawMessage(`{"text":"Which fixes help?"}`),
				Options:   json.RawMessage(`["More data","Less data","Balance"]`),
				Points:    4,
				Order:     2,
				AnswerKey: json.RawMessage(`{"correctSet":[0,2],"grading":"partial"}`),
			},
		},
	}
	return event, activity
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
