// Package app wires configuration, storage, domain services and the HTTP
// server into a runnable application.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/provision-api/internal/domain/cart"
	"github.com/xenking/provision-api/internal/domain/list"
	"github.com/xenking/provision-api/internal/domain/order"
	"github.com/xenking/provision-api/internal/handler"
	"github.com/xenking/provision-api/internal/storage/postgres"
	"github.com/xenking/provision-api/pkg/health"
	"github.com/xenking/provision-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
//
// When the backend connection parameters are absent the server still comes
// up: the status endpoint reports configured=false and every data route
// answers 503 so clients can render a setup-required state. The decision is
// made once, here, not per request.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	configured := cfg.Configured()
	lg.Info("Initializing", zap.String("addr", cfg.Addr), zap.Bool("configured", configured))

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	api := chi.NewRouter()
	api.Get("/status", handler.Status(configured))

	if configured {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}

		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.DatabasePingCheck(pool))

		ingredientRepo := postgres.NewIngredientRepository(pool)
		listRepo := postgres.NewListRepository(pool)
		orderRepo := postgres.NewOrderRepository(pool)
		apikeyRepo := postgres.NewAPIKeyRepository(pool)

		carts := cart.NewStore()
		carts.StartCleanup(ctx, cfg.Session.CleanupInterval, cfg.Session.MaxIdle)

		h := handler.NewHandler(
			ingredientRepo,
			list.NewService(listRepo, lg),
			order.NewService(orderRepo, lg),
			carts,
		)

		api.Group(func(r chi.Router) {
			r.Use(handler.RequireAPIKey(apikeyRepo, []byte(cfg.APIKeyPepper)))
			r.Mount("/", h.Routes())
		})
	} else {
		notConfigured := handler.NotConfigured()
		for _, route := range []string{"/ingredients", "/lists", "/carts", "/orders"} {
			api.Handle(route, notConfigured)
			api.Handle(route+"/*", notConfigured)
		}
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	mux := chi.NewRouter()
	mux.Get("/livez", healthSvc.LiveEndpoint)
	mux.Get("/readyz", healthSvc.ReadyEndpoint)
	mux.Mount("/api", api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type", "Authorization", handler.APIKeyHeader},
				// Content-Disposition carries the template download filename;
				// browser clients cannot read it unless it is exposed.
				ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("provision-api", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
