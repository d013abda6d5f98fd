package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/algobros/terminal-backend/api/routes"
	"github.com/algobros/terminal-backend/internal/analysis"
	"github.com/algobros/terminal-backend/internal/auth"
	"github.com/algobros/terminal-backend/internal/knowledge"
	"github.com/algobros/terminal-backend/internal/payment"
	"github.com/algobros/terminal-backend/internal/profile"
	sessionview "github.com/algobros/terminal-backend/internal/session"
	"github.com/algobros/terminal-backend/internal/trades"
	"github.com/algobros/terminal-backend/pkg/auth/session"
	"github.com/algobros/terminal-backend/pkg/config"
	"github.com/algobros/terminal-backend/pkg/db"
	"github.com/algobros/terminal-backend/pkg/gemini"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/metrics"
	"github.com/algobros/terminal-backend/pkg/migrate"
	"github.com/algobros/terminal-backend/pkg/outbox"
	"github.com/algobros/terminal-backend/pkg/redis"
	"github.com/algobros/terminal-backend/pkg/security"
	"github.com/algobros/terminal-backend/pkg/tronscan"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	normalizer := profile.NewNormalizer(cfg.Payment.OperatorEmail)
	profileRepo := profile.NewRepository(dbClient.DB())
	profileService := profile.NewService(profileRepo, normalizer, func(password string) (string, error) {
		return security.HashPassword(password, cfg.Password)
	}, logg)

	events := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo:    profileRepo,
		Normalizer:     normalizer,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Normalizer:     normalizer,
		Events:         events,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	tronClient := tronscan.NewClient(
		tronscan.WithBaseURL(cfg.Tron.BaseURL),
		tronscan.WithTimeout(cfg.Tron.Timeout),
	)

	paymentService, err := payment.NewService(
		cfg.Payment,
		dbClient,
		profileRepo,
		normalizer,
		tronClient,
		events,
		metrics.NewPaymentMetrics(prometheus.DefaultRegisterer),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	tradeService := trades.NewService(trades.NewRepository(dbClient.DB()), logg)
	knowledgeService := knowledge.NewService(dbClient, knowledge.NewRepository(dbClient.DB()), events, logg)

	geminiClient, err := gemini.NewClient(cfg.Gemini.APIKey,
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithTimeout(cfg.Gemini.Timeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gemini client", err)
		os.Exit(1)
	}
	analysisService := analysis.NewService(
		geminiClient,
		knowledgeService,
		tradeService,
		metrics.NewAnalysisMetrics(prometheus.DefaultRegisterer),
		logg,
	)

	sessionCtrl := sessionview.NewController(profileService, tradeService, knowledgeService, cfg.Access.Grace(), logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			profileService,
			sessionCtrl,
			paymentService,
			tradeService,
			knowledgeService,
			analysisService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
