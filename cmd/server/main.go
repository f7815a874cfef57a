package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/filter"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/selection"
	"storefront-be/internal/storage"

	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Minute
)

// app holds the process-wide stores and services shared by all handlers.
type app struct {
	cfg *config.Config

	catalog   *product.Catalog
	filters   *filter.State
	cart      *cart.Store
	selection *selection.Store
	gateway   payment.Gateway
	payments  *payment.Service
	provider  auth.Authenticator
	sessions  *auth.Sessions
	limiter   *middleware.RateLimiter
	stats     *metrics.HTTP
}

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slot, closeSlot, err := newCartSlot(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSlot()

	a, err := newApp(ctx, cfg, slot)
	if err != nil {
		return err
	}
	go a.limiter.Cleanup(ctx, cleanupInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           setupRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront server running", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCartSlot stores the cart in Redis when REDIS_URL is set, otherwise in a
// local file.
func newCartSlot(ctx context.Context, cfg *config.Config) (storage.Slot, func(), error) {
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		slot, err := storage.NewRedisSlot(rdb, cfg.CartStorageKey)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		logger.L().Info("cart stored in redis", zap.String("key", cfg.CartStorageKey))
		return slot, func() { _ = rdb.Close() }, nil
	}

	slot, err := storage.NewFileSlot(cfg.CartFile)
	if err != nil {
		return nil, nil, err
	}
	logger.L().Info("cart stored on disk", zap.String("path", cfg.CartFile))
	return slot, func() {}, nil
}

func newApp(ctx context.Context, cfg *config.Config, slot storage.Slot) (*app, error) {
	log := logger.L()

	sessions, err := auth.NewSessions(cfg.SessionSecret, auth.DefaultSessionTTL)
	if err != nil {
		return nil, err
	}

	var provider auth.Authenticator
	if cfg.AuthEnabled() {
		p, err := auth.NewOIDCProvider(ctx, auth.OIDCConfig{
			Issuer:       cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
		})
		if err != nil {
			log.Warn("identity provider unavailable, login disabled", zap.Error(err))
		} else {
			provider = p
		}
	}

	catalog := product.NewCatalog(product.NewClient(cfg.ProductsURL, cfg.SingleProductURL), cfg.CatalogTTL)
	cartStore := cart.NewStore(ctx, slot)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	a := &app{
		cfg:       cfg,
		catalog:   catalog,
		filters:   filter.NewState(),
		cart:      cartStore,
		selection: selection.NewStore(),
		gateway:   gateway,
		payments:  payment.NewService(gateway, catalog, cartStore, cfg.StripeCurrency),
		provider:  provider,
		sessions:  sessions,
		limiter:   middleware.NewRateLimiter(cfg.InternalSecretKey),
		stats:     metrics.NewHTTP(),
	}

	a.cart.Subscribe(func(s cart.Snapshot) {
		log.Debug("cart changed", zap.Int("lines", len(s.Lines)), zap.Int("items", s.TotalItems))
	})
	a.filters.Subscribe(func(s filter.Snapshot) {
		log.Debug("filters changed", zap.String("sort", string(s.Sort)), zap.Int("results", s.ResultCount))
	})

	return a, nil
}

func setupRouter(a *app) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", a.stats.HandleHealth)

	product.NewHandler(a.catalog).Register(mux)
	filter.NewHandler(a.filters, a.catalog).Register(mux)

	cartHandler := cart.NewHandler(a.cart, a.catalog)
	cartHandler.Register(mux)
	mux.Handle("GET /api/checkout", middleware.RequireAuth(http.HandlerFunc(cartHandler.HandleCheckout)))

	selection.NewHandler(a.selection, a.catalog, a.cart).Register(mux)
	payment.NewHandler(a.payments, a.gateway).Register(mux)
	auth.NewHandler(a.provider, a.sessions, auth.HandlerConfig{
		FrontendURL:   a.cfg.FrontendURL,
		SecureCookies: a.cfg.AppEnv == "production",
	}).Register(mux)

	// the last wrap runs first
	var h http.Handler = mux
	h = a.limiter.Middleware(h)
	h = middleware.LoggingMiddleware(a.stats)(h)
	h = middleware.AuthMiddleware(a.sessions)(h)
	h = middleware.CORS(a.cfg.FrontendURL)(h)
	h = logger.RequestIDMiddleware(h)
	return h
}
