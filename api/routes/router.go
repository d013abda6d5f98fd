package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algobros/terminal-backend/api/controllers"
	"github.com/algobros/terminal-backend/api/middleware"
	"github.com/algobros/terminal-backend/internal/analysis"
	"github.com/algobros/terminal-backend/internal/auth"
	"github.com/algobros/terminal-backend/internal/knowledge"
	"github.com/algobros/terminal-backend/internal/payment"
	"github.com/algobros/terminal-backend/internal/profile"
	sessionview "github.com/algobros/terminal-backend/internal/session"
	"github.com/algobros/terminal-backend/internal/trades"
	pkgsession "github.com/algobros/terminal-backend/pkg/auth/session"
	"github.com/algobros/terminal-backend/pkg/config"
	"github.com/algobros/terminal-backend/pkg/enums"
	"github.com/algobros/terminal-backend/pkg/logger"
	"github.com/algobros/terminal-backend/pkg/redis"
)

// NewRouter assembles the full HTTP surface: public health and auth,
// authenticated session/payment endpoints, subscription-gated terminal
// endpoints, and the admin plane.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient controllers.Pinger,
	redisClient *redis.Client,
	sessions pkgsession.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	profileService *profile.Service,
	sessionCtrl *sessionview.Controller,
	paymentService *payment.Service,
	tradeService *trades.Service,
	knowledgeService *knowledge.Service,
	analysisService *analysis.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		int(cfg.AuthRateLimit.LoginIPLimit),
		int(cfg.AuthRateLimit.LoginEmailLimit),
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		int(cfg.AuthRateLimit.RegisterIPLimit),
		int(cfg.AuthRateLimit.RegisterEmailLimit),
	)
	verifyPolicy := middleware.NewAuthRateLimitPolicy(
		"verify",
		cfg.AuthRateLimit.VerifyWindow,
		int(cfg.AuthRateLimit.VerifyIPLimit),
		0,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		}))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, sessionCtrl, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, cfg.JWT, logg))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Get("/session", controllers.SessionSnapshot(sessionCtrl, logg))
		r.With(middleware.UserRateLimit(verifyPolicy, redisClient, logg)).Post("/payments/verify", controllers.PaymentVerify(paymentService, profileService, sessionCtrl, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAccess(profileService, cfg.Access.Grace(), logg))

			r.Route("/trades", func(r chi.Router) {
				r.Get("/", controllers.TradeList(tradeService, logg))
				r.Post("/", controllers.TradeCreate(tradeService, logg))
				r.Patch("/{tradeID}/status", controllers.TradeResolve(tradeService, logg))
			})

			r.Route("/knowledge", func(r chi.Router) {
				r.Get("/", controllers.KnowledgeList(knowledgeService, logg))
				r.Post("/", controllers.KnowledgeSubmit(knowledgeService, logg))
				r.Delete("/", controllers.KnowledgeDeleteAll(knowledgeService, logg))
			})

			r.Post("/analysis", controllers.AnalysisRun(analysisService, logg))
		})
	})

	r.Route("/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", controllers.AdminProfileList(profileService, logg))
			r.Post("/import", controllers.AdminProfileImport(profileService, logg))
			r.Delete("/{profileID}", controllers.AdminProfileDelete(profileService, logg))
			r.Post("/{profileID}/access", controllers.AdminProfileToggleAccess(profileService, logg))
		})
		r.Get("/stats", controllers.AdminSalesStats(profileService, logg))
	})

	return r
}
