package main

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

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/yukikurage/sprint-tracker/internal/alarm"
	"github.com/yukikurage/sprint-tracker/internal/config"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/database"
	"github.com/yukikurage/sprint-tracker/internal/dto"
	"github.com/yukikurage/sprint-tracker/internal/handlers"
	"github.com/yukikurage/sprint-tracker/internal/notify"
	"github.com/yukikurage/sprint-tracker/internal/repository"
	"github.com/yukikurage/sprint-tracker/internal/services"
	"github.com/yukikurage/sprint-tracker/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the alarm monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	if cfg.GinMode == gin.ReleaseMode {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	sprintRepo := repository.NewSprintRepository(db)
	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewAppRepository(db)

	// Load the working set; every read is served from memory from here on
	st := store.New()
	if err := st.Load(ctx, taskRepo, sprintRepo); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	logger.Info("Loaded working set", slog.Int("tasks", len(st.Tasks())), slog.Int("sprints", len(st.Sprints())))

	writer := services.NewWriter(logger)
	defer writer.Close()

	events := notify.NewBroadcaster(logger)

	directory := services.NewDirectoryService(userRepo, appRepo, logger)
	if err := directory.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load directory: %w", err)
	}

	taskService := services.NewTaskService(st, taskRepo, writer, services.TaskServiceOptions{
		Cue:    events,
		Logger: logger,
	})
	sprintService := services.NewSprintService(st, sprintRepo, taskService, writer)
	commentService := services.NewCommentService(taskService, directory)
	authService := services.NewAuthService(userRepo, directory, cfg.IsAdminUsername)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	monitor := alarm.New(st, events, alarm.Options{
		Interval: cfg.AlarmPollInterval,
		LeadTime: cfg.AlarmLeadTime,
		Logger:   logger,
		Metrics:  alarm.NewMetrics(registry),
	})
	monitor.Start(ctx)
	defer monitor.Stop()

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	sessionStore, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return fmt.Errorf("failed to create Redis store: %w", err)
	}
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	enricher := dto.Enricher{Sprints: sprintService, Names: directory}
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Tasks:     handlers.NewTaskHandler(taskService, sprintService, directory, aiService, cfg.ListPageSize),
		Comments:  handlers.NewCommentHandler(commentService, enricher),
		Sprints:   handlers.NewSprintHandler(sprintService),
		Views:     handlers.NewViewHandler(taskService, sprintService, enricher, cfg.Location()),
		Alarms:    handlers.NewAlarmHandler(monitor),
		Events:    handlers.NewEventHandler(events),
		Directory: handlers.NewDirectoryHandler(directory),
	}, authService, taskService)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not cancel open event streams; ending the subscriptions does
	srv.RegisterOnShutdown(events.Close)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
