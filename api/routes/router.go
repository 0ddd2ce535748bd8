package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davemorenodev/loungelab-backend/api/controllers"
	"github.com/davemorenodev/loungelab-backend/api/middleware"
	"github.com/davemorenodev/loungelab-backend/internal/auth"
	"github.com/davemorenodev/loungelab-backend/internal/cart"
	checkoutsvc "github.com/davemorenodev/loungelab-backend/internal/checkout"
	"github.com/davemorenodev/loungelab-backend/internal/sizing"
	"github.com/davemorenodev/loungelab-backend/pkg/auth/session"
	"github.com/davemorenodev/loungelab-backend/pkg/config"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
	"github.com/davemorenodev/loungelab-backend/pkg/metrics"
	"github.com/davemorenodev/loungelab-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Redis           *redis.Client
	SessionChecker  session.AccessSessionChecker
	HTTPMetrics     *metrics.HTTPMetrics
	AuthService     auth.Service
	RegisterService auth.RegisterService
	CartService     cart.Service
	CheckoutService checkoutsvc.Service
	SizingService   sizing.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.CartToken())
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.With(middleware.Auth(cfg.JWT, deps.SessionChecker, logg)).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.CartToken())
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg))

		r.Get("/", controllers.CartList(deps.CartService, logg))
		r.Post("/", controllers.CartAdd(deps.CartService, cfg.Storefront, logg))
		r.Patch("/{lineID}", controllers.CartUpdateQuantity(deps.CartService, logg))
		r.Delete("/{lineID}", controllers.CartRemove(deps.CartService, logg))
		r.Delete("/", controllers.CartClear(deps.CartService, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(middleware.CartToken())
		r.Use(middleware.OptionalAuth(cfg.JWT, deps.SessionChecker, logg))
		r.Post("/", controllers.Checkout(deps.CheckoutService, logg))
	})

	r.Route("/api/v1/profile", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Put("/measurements", controllers.ProfileMeasurements(deps.SizingService, logg))
		r.Get("/size-recommendation", controllers.ProfileSizeRecommendation(deps.SizingService, logg))
	})

	return r
}
