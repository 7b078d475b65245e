package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maturitymap/internal/cache"
	"maturitymap/internal/catalog"
	"maturitymap/internal/config"
	"maturitymap/internal/logging"
	"maturitymap/internal/metrics"
	"maturitymap/internal/repository"
	"maturitymap/internal/service"
	"maturitymap/internal/transport/rest"
	"maturitymap/internal/transport/ws"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// NewServeCommand creates the 'maturitymap serve' command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	logger.Info("AI config",
		"assessmentModel", cfg.AI.Models.Assessment,
		"chatModel", cfg.AI.Models.Chat,
		"apiKey", cfg.AI.IsEnabled(),
	)
	if !cfg.AI.IsEnabled() {
		logger.Warn("GEMINI_API_KEY not set, every assessment will fail")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openSlotStore(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	history, closeHistory, err := openHistory(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	m := metrics.New()
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	client := service.NewAssessmentClient(cfg.AI, logger, m)
	chat := service.NewChatService(client, cfg.Chat, logger, m)
	sessions := service.NewSessionService(ctx, service.SessionOptions{
		Questions: catalog.Questions(),
		Assessor:  client,
		Store:     store,
		History:   history,
		Notifier:  wsHub,
		Survey:    cfg.Survey,
		Limits:    cfg.Sessions,
		OnEvict:   chat.Forget,
		Logger:    logger,
		Metrics:   m,
	})
	defer sessions.Close()

	router := rest.NewRouter(&rest.Container{
		Server:        cfg.Server,
		AuthService:   service.NewAuthService(cfg.Auth),
		Sessions:      sessions,
		ReportService: service.NewReportService(),
		ChatService:   chat,
		WSHub:         wsHub,
		Metrics:       m,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		sessions.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// openSlotStore connects to Redis when configured and falls back to memory
func openSlotStore(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (cache.SlotStore, func(), error) {
	if cfg.Addr == "" {
		logger.Warn("REDIS_URI not set, previous results are kept in memory")
		return cache.NewMemorySlotStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to Redis", "addr", cfg.Addr)
	return cache.NewRedisSlotStore(rdb), func() { rdb.Close() }, nil
}

// openHistory connects to MongoDB when configured; history is off otherwise
func openHistory(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (repository.AssessmentRepo, func(), error) {
	if cfg.URI == "" {
		logger.Warn("MONGO_URI not set, assessment history is disabled")
		return nil, func() {}, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(dctx)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", "database", cfg.Database)
	return repository.NewAssessmentRepo(client.Database(cfg.Database)), disconnect, nil
}
