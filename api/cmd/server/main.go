package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mediaTracker/api/config"
	"mediaTracker/api/handlers"
	"mediaTracker/api/middleware"
	"mediaTracker/api/service"
	"mediaTracker/tracker/backend"
	"mediaTracker/tracker/cache"
	"mediaTracker/tracker/database"
	"mediaTracker/tracker/feedback"
	"mediaTracker/tracker/kafka"
	"mediaTracker/tracker/metrics"
	"mediaTracker/tracker/repository"
	"mediaTracker/tracker/scheduler"
	"mediaTracker/tracker/sink"
)

func main() {
	cfg := config.Load()

	logger, err := cfg.NewLogger()
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()

	logger.Info("Tracker service starting",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.Tracker.BackendURL),
	)

	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Tracker.BackendURL, cfg.Tracker.BackendTimeout,
		backend.WithToken(cfg.Tracker.BackendToken),
		backend.WithTraceIDFunc(middleware.GetTraceID),
	)

	repo := repository.NewMemoryRepository(logger)
	loadInitial(ctx, client, repo, logger)

	sinks, closers := connectSinks(ctx, cfg, logger)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	var background sync.WaitGroup

	dispatcher := sink.NewDispatcher(cfg.Tracker.SinkBuffer, logger, sinks...)
	if dispatcher.Len() > 0 {
		unsubscribe := dispatcher.Attach(repo)
		defer unsubscribe()

		background.Add(1)
		go func() {
			defer background.Done()
			dispatcher.Run(context.WithoutCancel(ctx))
		}()
	}

	if brokers := cfg.Tracker.Brokers(); len(brokers) > 0 && cfg.Tracker.KafkaStatusTopic != "" {
		consumer, err := kafka.NewConsumer(brokers, cfg.Tracker.KafkaGroupID, logger)
		if err != nil {
			logger.Error("Failed to create status consumer", zap.Error(err))
		} else {
			defer consumer.Close()

			background.Add(1)
			go func() {
				defer background.Done()
				if err := consumer.Consume(ctx, cfg.Tracker.KafkaStatusTopic, kafka.SnapshotHandler(repo, logger)); err != nil {
					logger.Error("Status consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	poller := scheduler.NewPoller(repo, client, scheduler.Config{
		Interval:       cfg.Tracker.PollInterval,
		MaxConcurrency: cfg.Tracker.PollMaxConcurrency,
	}, logger)
	if err := poller.Start(ctx); err != nil {
		logger.Fatal("Failed to start poller", zap.Error(err))
	}

	views := service.NewViewService(repo, nil, feedback.NewCache(client, logger))

	mux := http.NewServeMux()
	handlers.NewTaskHandler(views, logger).Register(mux)
	mux.Handle("GET /metrics", metrics.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Chain(mux, middleware.TraceID, middleware.Logging(logger), middleware.Recovery(logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Server started", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	poller.Stop()
	poller.Wait()
	dispatcher.Close()
	background.Wait()

	logger.Info("Tracker service stopped")
}

func loadInitial(ctx context.Context, client *backend.Client, repo *repository.MemoryRepository, logger *zap.Logger) {
	tasks, skipped, err := client.ListTasks(ctx)
	if err != nil {
		logger.Error("Failed to load task list", zap.Error(err))
		return
	}
	for _, err := range skipped {
		logger.Warn("Skipped undecodable task from initial list", zap.Error(err))
	}

	for _, task := range tasks {
		if err := repo.Upsert(task); err != nil {
			logger.Warn("Skipped task from initial list",
				zap.String("task_id", task.ID),
				zap.Error(err),
			)
		}
	}

	logger.Info("Initial task list loaded",
		zap.Int("tasks", repo.Len()),
		zap.Int("active", len(repo.ActiveIDs())),
		zap.Int("skipped", len(skipped)),
	)
}

// connectSinks builds every sink whose connection setting is present.
// A sink that fails to connect is logged and left out.
func connectSinks(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]sink.Sink, []func()) {
	var (
		sinks   []sink.Sink
		closers []func()
	)

	if cfg.Tracker.RedisAddr != "" {
		rc, err := database.ConnectRedis(ctx, cfg.Tracker.RedisAddr, cfg.Tracker.RedisPassword, cfg.Tracker.RedisDB)
		if err != nil {
			logger.Error("Failed to connect to Redis", zap.Error(err))
		} else {
			sinks = append(sinks, cache.NewStatusCache(rc))
			closers = append(closers, func() { rc.Close() })
			logger.Info("Redis status cache enabled", zap.String("addr", cfg.Tracker.RedisAddr))
		}
	}

	if brokers := cfg.Tracker.Brokers(); len(brokers) > 0 {
		producer, err := kafka.NewProducer(brokers, cfg.Tracker.KafkaEventsTopic)
		if err != nil {
			logger.Error("Failed to create Kafka producer", zap.Error(err))
		} else {
			sinks = append(sinks, producer)
			closers = append(closers, func() { producer.Close() })
			logger.Info("Kafka status events enabled", zap.String("topic", cfg.Tracker.KafkaEventsTopic))
		}
	}

	if cfg.Tracker.DatabaseURL != "" {
		db, err := database.ConnectPostgres(ctx, cfg.Tracker.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to Postgres", zap.Error(err))
		} else if err := db.EnsureArchiveSchema(ctx); err != nil {
			logger.Error("Failed to prepare archive table", zap.Error(err))
			db.Close()
		} else {
			sinks = append(sinks, repository.NewPostgresArchive(db.Pool))
			closers = append(closers, db.Close)
			logger.Info("Postgres archive enabled")
		}
	}

	return sinks, closers
}
