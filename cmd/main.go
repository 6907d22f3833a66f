package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"leadflow/internal/config"
	"leadflow/internal/entities"
	"leadflow/internal/infrastructure"
	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/interfaces"
	api "leadflow/internal/interfaces/http"
	"leadflow/internal/repository"
	"leadflow/internal/usecases"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	log := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and run migrations
	pgClient, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	defer pgClient.Close()

	// Repositories
	companyRepo := repository.NewCompanyRepository(pgClient.Pool)
	leadRepo := repository.NewLeadRepository(pgClient.Pool)
	profileRepo := repository.NewScoringProfileRepository(pgClient.Pool)
	templateRepo := repository.NewTemplateRepository(pgClient.Pool)
	interactionRepo := repository.NewInteractionRepository(pgClient.Pool)
	messageRepo := repository.NewMessageRepository(pgClient.Pool)
	evalRepo := repository.NewEvalRepository(pgClient.Pool)
	userRepo := repository.NewUserRepository(pgClient.Pool)
	statsRepo := repository.NewStatsRepository(pgClient.Pool)
	searchRepo := repository.NewSearchRepository(pgClient.Pool)

	// Model client; one instance shares one circuit breaker
	llm, err := grok.New(grok.Config{
		APIKey:     cfg.Grok.APIKey,
		Model:      cfg.Grok.Model,
		BaseURL:    cfg.Grok.BaseURL,
		Timeout:    cfg.Grok.Timeout,
		MaxRetries: cfg.Grok.MaxRetries,
	}, grok.WithLogger(log))
	if err != nil {
		log.Error("grok client init failed", "error", err)
		os.Exit(1)
	}

	// Outbound channels. Telegram doubles as the operator notifier; email
	// and linkedin have no live transport, those sends queue instead.
	messengers := map[string]interfaces.Messenger{}
	var notifier interfaces.Notifier
	if cfg.Telegram.BotToken != "" {
		tg, err := infrastructure.NewTelegramClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
		if err != nil {
			log.Warn("telegram disabled", "error", err)
		} else {
			messengers[entities.ChannelTelegram] = tg
			notifier = tg
		}
	}
	if cfg.WhatsApp.AccessToken != "" && cfg.WhatsApp.PhoneNumberID != "" {
		messengers[entities.ChannelWhatsApp] = infrastructure.NewWhatsAppBusinessClient(
			cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneNumberID)
	}

	sendGate := infrastructure.NewSendRateLimiter(1.0/60, 5) // per lead: 1 send/min, burst 5

	// Usecases & services
	authUsecase := usecases.NewAuthUsecase(userRepo, cfg.JWTSecret)
	if err := authUsecase.EnsureAdmin(ctx, "root", "root"); err != nil {
		log.Warn("ensure admin failed", "error", err)
	}

	scoringService := usecases.NewScoringService(llm, leadRepo, companyRepo, profileRepo, interactionRepo, log)
	outreachService := usecases.NewOutreachService(llm, leadRepo, companyRepo, templateRepo,
		messageRepo, interactionRepo, messengers, sendGate, log)
	pipelineService := usecases.NewPipelineService(leadRepo, interactionRepo, notifier, log)
	evalService := usecases.NewEvalService(llm, evalRepo, log)
	dashboardUsecase := usecases.NewDashboardUsecase(statsRepo)
	followupService := usecases.NewFollowupService(leadRepo, interactionRepo, notifier,
		time.Duration(cfg.FollowupStaleDays)*24*time.Hour, log)

	// HTTP server
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.SetupRoutes(r, api.Deps{
		Auth:         authUsecase,
		Companies:    companyRepo,
		Leads:        leadRepo,
		Profiles:     profileRepo,
		Templates:    templateRepo,
		Interactions: interactionRepo,
		Messages:     messageRepo,
		Users:        userRepo,
		EvalCases:    evalRepo,
		Scoring:      scoringService,
		Outreach:     outreachService,
		Pipeline:     pipelineService,
		Eval:         evalService,
		Dashboard:    dashboardUsecase,
		Search:       searchRepo,
		Log:          log,
	}, api.NewMiddleware(cfg.JWTSecret))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Follow-up scheduler
	scheduler, err := infrastructure.NewScheduler(log)
	if err != nil {
		log.Error("scheduler init failed", "error", err)
		os.Exit(1)
	}
	err = scheduler.AddEvery("followup-scan", cfg.FollowupInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := followupService.Run(jobCtx); err != nil {
			log.Error("follow-up scan failed", "error", err)
		}
	})
	if err != nil {
		log.Error("schedule follow-up job failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		if err := scheduler.Stop(); err != nil {
			log.Warn("scheduler stop", "error", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}

// setupLogger builds the process logger from config and installs it as the
// slog default.
func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
