package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecochain-be/internal/cart"
	"ecochain-be/internal/collection"
	"ecochain-be/internal/config"
	"ecochain-be/internal/dashboard"
	"ecochain-be/internal/db"
	"ecochain-be/internal/httpapi"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/middleware"
	"ecochain-be/internal/order"
	"ecochain-be/internal/payout"
	"ecochain-be/internal/payout/webhook"
	"ecochain-be/internal/product"
	"ecochain-be/internal/realtime"
	"ecochain-be/internal/report"
	"ecochain-be/internal/retry"
	"ecochain-be/internal/tokens"
	"ecochain-be/internal/user"
	"ecochain-be/internal/wallet"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	hub     *realtime.Hub
}

// buildApp wires repositories, services and the HTTP surface onto database.
func buildApp(cfg *config.Config, database *sql.DB) *app {
	policy := retry.Policy{Attempts: cfg.RetryAttempts, BaseDelay: cfg.RetryBaseDelay}
	econ := tokens.NewEconomy(tokens.Config{
		TokenValueINR:         cfg.TokenValueINR,
		GSTRate:               cfg.GSTRate,
		ShippingFlatFee:       cfg.ShippingFlatFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	})

	hub := realtime.NewHub(cfg.CORSOrigins)

	userRepo := user.NewRepository(database)
	walletRepo := wallet.NewRepository(database)
	productRepo := product.NewRepository(database)
	cartRepo := cart.NewRepository(database)
	orderRepo := order.NewRepository(database)
	collectionRepo := collection.NewRepository(database)
	dashboardRepo := dashboard.NewRepository(database)

	gateway := payout.NewXenditGateway(cfg.XenditSecretKey, cfg.XenditPayoutsURL, policy)

	userSvc := user.NewService(userRepo)
	walletSvc := wallet.NewService(walletRepo)
	productSvc := product.NewService(productRepo)
	cartSvc := cart.NewService(cartRepo, productRepo)
	orderSvc := order.NewService(orderRepo, cartSvc, productRepo, walletRepo, econ, hub)
	collectionSvc := collection.NewService(collectionRepo, gateway, hub)
	dashboardSvc := dashboard.NewService(dashboardRepo, collectionRepo, orderRepo, walletRepo, cfg.DashboardCacheTTL)

	// any state change makes cached aggregates stale
	hub.OnPublish(func(realtime.Event) { dashboardSvc.Invalidate() })

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	handler := httpapi.NewRouter(httpapi.Deps{
		Users:       userSvc,
		Collections: collectionSvc,
		Wallets:     walletSvc,
		Products:    productSvc,
		Cart:        cartSvc,
		Orders:      orderSvc,
		Dashboard:   dashboardSvc,
		Reports:     report.NewGenerator(collectionSvc),
		Hub:         hub,
		Webhook:     webhook.NewWebhookHandler(collectionSvc, cfg.XenditWebhookKey),
		Limiter:     limiter,
		DB:          database,
		CORSOrigins: cfg.CORSOrigins,
	})

	return &app{handler: handler, limiter: limiter, hub: hub}
}

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.XenditSecretKey == "" {
		log.Warn("XENDIT_APIKEY is not set; collector payouts will fail and be marked for follow-up")
	}

	database := db.InitDB(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := buildApp(cfg, database)
	go a.limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", zap.Int("ws_clients", a.hub.ClientCount()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
