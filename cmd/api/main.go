package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/davemorenodev/loungelab-backend/api/routes"
	"github.com/davemorenodev/loungelab-backend/internal/auth"
	"github.com/davemorenodev/loungelab-backend/internal/cart"
	checkoutsvc "github.com/davemorenodev/loungelab-backend/internal/checkout"
	"github.com/davemorenodev/loungelab-backend/internal/identity"
	"github.com/davemorenodev/loungelab-backend/internal/reconcile"
	"github.com/davemorenodev/loungelab-backend/internal/sizing"
	"github.com/davemorenodev/loungelab-backend/internal/users"
	"github.com/davemorenodev/loungelab-backend/pkg/auth/session"
	"github.com/davemorenodev/loungelab-backend/pkg/config"
	"github.com/davemorenodev/loungelab-backend/pkg/db"
	"github.com/davemorenodev/loungelab-backend/pkg/kvstore"
	"github.com/davemorenodev/loungelab-backend/pkg/logger"
	"github.com/davemorenodev/loungelab-backend/pkg/metrics"
	"github.com/davemorenodev/loungelab-backend/pkg/migrate"
	"github.com/davemorenodev/loungelab-backend/pkg/redis"
	"github.com/davemorenodev/loungelab-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	guestChain, err := buildGuestChain(ctx, cfg, logg, redisClient)
	if err != nil {
		logg.Error(ctx, "failed to build guest cart storage chain", err)
		os.Exit(1)
	}
	guestStore, err := cart.NewGuestStore(guestChain, cfg.GuestCart.TTL, cfg.GuestCart.MaxLineCount, logg)
	if err != nil {
		logg.Error(ctx, "failed to create guest cart store", err)
		os.Exit(1)
	}

	cartRepo := cart.NewRepository(dbClient.DB())
	cartService, err := cart.NewService(guestStore, cartRepo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart service", err)
		os.Exit(1)
	}

	broadcaster, err := identity.NewBroadcaster(logg)
	if err != nil {
		logg.Error(ctx, "failed to create identity broadcaster", err)
		os.Exit(1)
	}

	reconciler, err := reconcile.NewController(guestStore, cartRepo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create cart reconciliation controller", err)
		os.Exit(1)
	}
	reconciler.Subscribe(broadcaster)

	var squareClient *square.Client
	if cfg.Square.AccessToken != "" {
		squareClient, err = square.NewClient(ctx, cfg.Square, logg)
		if err != nil {
			logg.Error(ctx, "failed to create square client", err)
			os.Exit(1)
		}
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		Transitions:    broadcaster,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerParams := auth.RegisterServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		Transitions:    broadcaster,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Flags:          cfg.FeatureFlags,
		Logger:         logg,
	}
	if squareClient != nil {
		registerParams.Provisioner = squareClient
	}
	registerService, err := auth.NewRegisterService(registerParams)
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	sizingService, err := sizing.NewService(sizing.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create sizing service", err)
		os.Exit(1)
	}

	var checkoutService checkoutsvc.Service
	if squareClient != nil {
		checkoutClient, err := square.NewCheckoutClient(squareClient, cfg.Square.LocationID)
		if err != nil {
			logg.Error(ctx, "failed to create square checkout client", err)
			os.Exit(1)
		}
		platform, err := checkoutsvc.NewSquarePlatform(checkoutClient, cfg.Storefront.RedirectURL)
		if err != nil {
			logg.Error(ctx, "failed to create checkout platform", err)
			os.Exit(1)
		}
		checkoutService, err = checkoutsvc.NewService(cartService, platform, cfg.Storefront.ProductID, logg)
		if err != nil {
			logg.Error(ctx, "failed to create checkout service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "square access token not configured, checkout disabled")
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionChecker:  sessionManager,
			HTTPMetrics:     httpMetrics,
			AuthService:     authService,
			RegisterService: registerService,
			CartService:     cartService,
			CheckoutService: checkoutService,
			SizingService:   sizingService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(startCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildGuestChain assembles the guest cart fallback chain: Redis, then a
// file-backed store, then memory. MemoryOnly collapses it to memory alone.
func buildGuestChain(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (*kvstore.Chain, error) {
	stores := make([]kvstore.Store, 0, 3)

	if !cfg.GuestCart.MemoryOnly {
		redisStore, err := kvstore.NewRedisStore(redisClient)
		if err != nil {
			return nil, err
		}
		stores = append(stores, redisStore)

		fileStore, err := kvstore.NewFileStore(cfg.GuestCart.FallbackDir)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "file cart store unavailable, skipping")
		} else {
			stores = append(stores, fileStore)
		}
	}

	stores = append(stores, kvstore.NewMemoryStore())
	return kvstore.NewChain(logg, stores...)
}
