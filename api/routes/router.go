package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quanty/quanty-backend/api/controllers"
	"github.com/quanty/quanty-backend/api/middleware"
	"github.com/quanty/quanty-backend/internal/auth"
	"github.com/quanty/quanty-backend/internal/catalog"
	"github.com/quanty/quanty-backend/internal/interviews"
	"github.com/quanty/quanty-backend/internal/oauth"
	"github.com/quanty/quanty-backend/internal/profiles"
	"github.com/quanty/quanty-backend/internal/questions"
	"github.com/quanty/quanty-backend/pkg/auth/session"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/logger"
	"github.com/quanty/quanty-backend/pkg/metrics"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies groups everything the router hands to controllers and middleware.
// OAuth may be nil when Google sign-in is not configured.
type Dependencies struct {
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	RateLimiter rateLimiter
	Sessions    session.AccessSessionChecker
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics
	AuthMetrics *metrics.AuthMetrics
	Auth        auth.Service
	OAuth       *oauth.Service
	Profiles    profiles.Service
	Interviews  interviews.Service
	Catalog     *catalog.Service
	Questions   *questions.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	requireAuth := middleware.Auth(cfg.JWT, deps.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DBPinger,
			"redis":    deps.RedisPinger,
		}))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/private", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/ping", controllers.PrivatePing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, deps.RateLimiter, deps.AuthMetrics, logg)).
			Post("/signup", controllers.AuthSignup(deps.Auth, deps.AuthMetrics, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, deps.AuthMetrics, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, deps.AuthMetrics, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, deps.AuthMetrics, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, deps.AuthMetrics, logg))
		r.With(requireAuth).Get("/session", controllers.AuthSession(deps.Auth, logg))

		if deps.OAuth != nil {
			secure := cfg.App.IsProd()
			r.Get("/google/start", controllers.GoogleStart(deps.OAuth, secure, logg))
			r.Get("/google/callback", controllers.GoogleCallback(deps.OAuth, deps.AuthMetrics, secure, logg))
		}
	})

	r.Route("/api/v1/interviews", func(r chi.Router) {
		r.Get("/", controllers.InterviewsList(deps.Interviews, logg))
		r.Get("/{id}", controllers.InterviewGet(deps.Interviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, middleware.RequireContentAdmin(deps.Profiles, logg))
			r.Post("/", controllers.InterviewCreate(deps.Interviews, logg))
			r.Patch("/{id}", controllers.InterviewUpdate(deps.Interviews, logg))
			r.Delete("/{id}", controllers.InterviewDelete(deps.Interviews, logg))
		})
	})

	r.Get("/api/v1/categories", controllers.CategoriesList(deps.Catalog, logg))
	r.Get("/api/v1/experts", controllers.ExpertsList(deps.Catalog, logg))
	r.Get("/api/v1/questions", controllers.QuestionsList(deps.Questions, logg))

	r.Route("/api/v1/profiles", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", controllers.ProfileMe(deps.Profiles, logg))
		r.Patch("/me", controllers.ProfileUpdateMe(deps.Profiles, logg))
		r.Get("/{id}", controllers.ProfileGet(deps.Profiles, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireMasterAdmin(cfg.Admin, logg))
		r.Put("/profiles/{id}/role", controllers.AdminSetProfileRole(deps.Profiles, logg))
	})

	return r
}
