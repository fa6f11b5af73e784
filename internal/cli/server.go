package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sprint-quiz-service/internal/app"
	"sprint-quiz-service/internal/config"
	"sprint-quiz-service/internal/domain"
	"sprint-quiz-service/internal/infra/memory"
	"sprint-quiz-service/internal/infra/postgres"
	rediscache "sprint-quiz-service/internal/infra/redis"
	"sprint-quiz-service/internal/logger"
	"sprint-quiz-service/internal/metrics"
	transport "sprint-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	activityTTL := config.TTLDuration(cfg.Activities.TTL, 10*time.Minute)

	var loader memory.ActivityLoader
	var content app.ContentStore
	var submissions app.SubmissionStore
	var teams app.TeamRegistry
	switch {
	case pool != nil:
		pgLoader := postgres.NewActivityLoader(pool)
		pgStore := postgres.NewSubmissionStore(pool)
		loader, content = pgLoader, pgLoader
		submissions, teams = pgStore, pgStore
		log.Info("using postgres storage")
	case redisClient != nil:
		demo := demoLoader()
		loader, content = demo, demo
		store := rediscache.NewSubmissionStore(redisClient)
		for _, t := range demoTeams() {
			if _, err := store.RegisterTeam(ctx, t); err != nil {
				return err
			}
		}
		submissions, teams = store, store
		log.Info("using redis storage with demo content")
	default:
		demo := demoLoader()
		loader, content = demo, demo
		store := memory.NewSubmissionStore(demoTeams()...)
		submissions, teams = store, store
		log.Info("using in-memory storage with demo content")
	}

	var activities interface {
		app.ActivityRepository
		app.ActivityCache
	}
	if redisClient != nil {
		activities = rediscache.NewActivityRepository(redisClient, loader, activityTTL)
	} else {
		activities = memory.NewActivityRepository(loader, activityTTL)
	}

	m := metrics.New()
	service := app.NewSubmissionService(activities, submissions, log, app.WithMetrics(m))
	admin := app.NewAdminService(content, activities, teams, log)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service, admin, m, log, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
	}

	go func() {
		log.Info("starting scoring service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func demoLoader() *memory.StaticActivityLoader {
	event, activities := demoContent()
	return memory.NewStaticActivityLoader([]domain.Event{event}, activities)
}
