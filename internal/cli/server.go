package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-engine/internal/app"
	"quiz-engine/internal/config"
	"quiz-engine/internal/infra/memory"
	"quiz-engine/internal/infra/postgres"
	redisinfra "quiz-engine/internal/infra/redis"
	"quiz-engine/internal/logging"
	transport "quiz-engine/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed the builtin catalog into Postgres before serving")
	return cmd
}

func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.Init(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}

// backends holds the storage chosen from config; close releases it.
type backends struct {
	loader  memory.QuizLoader
	catalog app.CatalogSource
	quizzes app.QuizRepository
	results app.ResultRepository
	store   app.SessionRepository

	// closeSessions stops live attempts on shutdown and returns how many there were.
	closeSessions func(ctx context.Context) int
	close         func()
}

func buildBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (backends, error) {
	var b backends
	var closers []func()
	b.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		if err := redisClient.Ping(ctx).Err(); err != nil {
			b.close()
			return b, fmt.Errorf("redis ping: %w", err)
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return b, fmt.Errorf("postgres connect: %w", err)
		}
		closers = append(closers, pool.Close)
		pgLoader := postgres.NewQuizLoader(pool)
		b.loader, b.catalog = pgLoader, pgLoader

		db := postgres.OpenBun(cfg.Postgres.URL)
		closers = append(closers, func() { _ = db.Close() })
		b.results = postgres.NewResultStore(db)
	} else {
		catalog, err := loadCatalog("")
		if err != nil {
			b.close()
			return b, err
		}
		static := memory.NewStaticQuizLoader(catalog.QuizMap()).WithCategories(catalog.Categories...)
		b.loader, b.catalog = static, static
		logger.Info("serving builtin catalog", "quizzes", len(catalog.Quizzes))
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if redisClient != nil {
		b.quizzes = redisinfra.NewQuizRepository(redisClient, b.loader, quizTTL)
		store := redisinfra.NewSessionStore(redisClient, redisTTL)
		b.store, b.closeSessions = store, store.CloseAll
		if b.results == nil {
			b.results = redisinfra.NewResultStore(redisClient)
		}
	} else {
		b.quizzes = memory.NewQuizRepository(b.loader, quizTTL)
		store := memory.NewSessionStore()
		b.store = store
		b.closeSessions = func(context.Context) int { return store.CloseAll() }
	}
	if b.results == nil {
		b.results = memory.NewResultStore()
	}
	return b, nil
}

func runServer(ctx context.Context, configPath, portFlag string, seed bool) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
		if seed {
			if err := seedBuiltin(ctx, cfg); err != nil {
				return err
			}
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := buildBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	service := app.NewQuizService(b.store, b.quizzes, b.results,
		app.WithLogger(logger),
		app.WithTickInterval(config.TTLDuration(cfg.Quiz.Tick, time.Second)),
		app.WithSessionOptions(app.WithTimeDefaults(cfg.Quiz.DefaultDuration, cfg.Quiz.DefaultQuestionTime)),
	)
	catalog := app.NewCatalogService(b.catalog)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, catalog, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting quiz service", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if n := b.closeSessions(shutdownCtx); n > 0 {
			logger.Info("discarded unsubmitted attempts", "count", n)
		}
		return err
	})
	return g.Wait()
}

func seedBuiltin(ctx context.Context, cfg config.Config) error {
	catalog, err := loadCatalog("")
	if err != nil {
		return err
	}
	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()
	return postgres.Seed(ctx, db, catalog.Categories, catalog.Quizzes)
}
