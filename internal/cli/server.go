package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"linguahub/internal/ai"
	"linguahub/internal/app"
	"linguahub/internal/config"
	"linguahub/internal/domain"
	"linguahub/internal/identity"
	"linguahub/internal/infra/memory"
	"linguahub/internal/infra/postgres"
	redisrepo "linguahub/internal/infra/redis"
	"linguahub/internal/realtime"
	transport "linguahub/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the API and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var (
		messages      app.MessageStore
		notifications app.NotificationStore
		tests         app.TestStore
		submissions   app.SubmissionStore
		doubts        app.DoubtStore
		users         app.UserDirectory
	)
	if pool != nil {
		messages = postgres.NewMessageStore(pool)
		notifications = postgres.NewNotificationStore(pool)
		pgTests := postgres.NewTestStore(pool)
		tests = pgTests
		submissions = pgTests
		doubts = postgres.NewDoubtStore(pool)
		users = postgres.NewUserDirectory(pool)
	} else {
		messages = memory.NewMessageStore()
		notifications = memory.NewNotificationStore()
		memTests := memory.NewTestStore()
		tests = memTests
		submissions = memTests
		doubts = memory.NewDoubtStore()
		users = memory.NewUserDirectory(cfg.DirectoryUsers())
	}

	cacheTTL := config.TTLDuration(cfg.Tests.CacheTTL, 10*time.Minute)
	var content app.TestContentRepository
	if redisClient != nil {
		content = redisrepo.NewTestRepository(redisClient, tests, cacheTTL)
	} else {
		content = memory.NewTestRepository(tests, cacheTTL)
	}

	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry)

	verifier := staticVerifier(cfg)

	notificationSvc := app.NewNotificationService(notifications, dispatcher)
	chatSvc := app.NewChatService(messages, users, dispatcher, registry)
	testSvc := app.NewTestService(tests, submissions, content, users, notificationSvc, ai.Unconfigured{})
	doubtSvc := app.NewDoubtService(doubts, users, tests, notificationSvc, ai.Unconfigured{})
	progressSvc := app.NewProgressService(submissions, cfg.Location())

	rps := cfg.Rate.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Rate.Burst
	if burst <= 0 {
		burst = 20
	}
	limiter := transport.NewRateLimiter(rps, burst)

	wsHandler := transport.NewWSHandler(verifier, registry, dispatcher)
	srv := transport.NewServer(chatSvc, notificationSvc, testSvc, doubtSvc, progressSvc, wsHandler, verifier, limiter)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func staticVerifier(cfg config.Config) identity.Verifier {
	principals := make(map[string]identity.Principal, len(cfg.Auth.Tokens))
	for token, tu := range cfg.Auth.Tokens {
		principals[token] = identity.Principal{ID: tu.ID, Name: tu.Name, Role: domain.Role(tu.Role)}
	}
	return identity.NewStaticVerifier(principals)
}
