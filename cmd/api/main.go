package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/smartsales/api"
	"github.com/angelmondragon/smartsales/api/controllers"
	"github.com/angelmondragon/smartsales/api/routes"
	"github.com/angelmondragon/smartsales/internal/auth"
	"github.com/angelmondragon/smartsales/internal/cart"
	"github.com/angelmondragon/smartsales/internal/catalog"
	"github.com/angelmondragon/smartsales/internal/checkout"
	"github.com/angelmondragon/smartsales/internal/orders"
	"github.com/angelmondragon/smartsales/internal/users"
	"github.com/angelmondragon/smartsales/pkg/auth/session"
	"github.com/angelmondragon/smartsales/pkg/config"
	"github.com/angelmondragon/smartsales/pkg/db"
	"github.com/angelmondragon/smartsales/pkg/instance"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/metrics"
	"github.com/angelmondragon/smartsales/pkg/migrate"
	"github.com/angelmondragon/smartsales/pkg/redis"
	"github.com/angelmondragon/smartsales/pkg/smartsales"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i].Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error releasing resources", closeErr)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	closers = append(closers, redisClient)

	// the database only backs cart snapshots
	var dbClient *db.Client
	if cfg.Cart.UsesDatabase() {
		dbClient, err = db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient)

		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	persister, err := newCartPersister(ctx, cfg, logg, redisClient, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to build cart persister", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)

	backend, err := smartsales.New(cfg.Backend,
		smartsales.WithMetrics(metrics.NewBackendMetrics(registry)),
		smartsales.WithLogger(logg),
	)
	if err != nil {
		logg.Error(ctx, "failed to create backend client", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Backend:        backend,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	requireService(ctx, logg, "auth", err)

	cartService, err := cart.NewService(persister, logg)
	requireService(ctx, logg, "cart", err)

	catalogService, err := catalog.NewService(backend, logg)
	requireService(ctx, logg, "catalog", err)

	checkoutService, err := checkout.NewService(backend, metrics.NewCheckoutMetrics(registry), logg)
	requireService(ctx, logg, "checkout", err)

	ordersService, err := orders.NewService(backend, logg)
	requireService(ctx, logg, "orders", err)

	usersService, err := users.NewService(backend, logg)
	requireService(ctx, logg, "users", err)

	var dbPinger controllers.Pinger
	if dbClient != nil {
		dbPinger = dbClient
	}

	router := routes.NewRouter(
		cfg,
		logg,
		registry,
		httpMetrics,
		dbPinger,
		redisClient,
		sessionManager,
		authService,
		cartService,
		catalogService,
		checkoutService,
		ordersService,
		usersService,
	)
	server := api.NewServer(cfg, otelhttp.NewHandler(router, "smartsales-gateway"))

	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       server.Addr,
		"instance":   instance.ID(),
		"cart_store": cfg.Cart.Store,
	})
	logg.Info(ctx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
		return
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}

func newCartPersister(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, dbClient *db.Client) (cart.Persister, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Cart.Store)) {
	case config.CartStoreMemory:
		return cart.NewMemoryPersister(), nil
	case config.CartStoreDatabase:
		persister, err := cart.NewDBPersister(dbClient.DB(), cfg.Cart.TTL)
		if err != nil {
			return nil, err
		}
		purged, err := persister.PurgeExpired(ctx)
		if err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "failed to purge expired carts")
		} else if purged > 0 {
			logg.Info(logg.WithField(ctx, "purged", purged), "purged expired carts")
		}
		return persister, nil
	default:
		return cart.NewRedisPersister(redisClient, cfg.Cart.TTL)
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "service", name), "failed to create service", err)
	os.Exit(1)
}
