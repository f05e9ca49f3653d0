package httpapi

import (
	"context"
	"net/http"
	"time"

	"ecochain-be/internal/cart"
	"ecochain-be/internal/collection"
	"ecochain-be/internal/dashboard"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/middleware"
	"ecochain-be/internal/order"
	"ecochain-be/internal/payout/webhook"
	"ecochain-be/internal/product"
	"ecochain-be/internal/realtime"
	"ecochain-be/internal/report"
	"ecochain-be/internal/user"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/wallet"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const requestTimeout = 30 * time.Second

// Pinger reports database reachability for /health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Users       user.Service
	Collections collection.Service
	Wallets     wallet.Service
	Products    product.Service
	Cart        cart.Service
	Orders      order.Service
	Dashboard   dashboard.Service
	Reports     *report.Generator
	Hub         *realtime.Hub
	Webhook     *webhook.Handler
	Limiter     *middleware.RateLimiter
	DB          Pinger
	CORSOrigins []string
}

type api struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	a := &api{Deps: d}
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Device-ID"},
		ExposedHeaders:   []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.AuthMiddleware)
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSONError(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		utils.WriteJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", a.health)
	if d.Hub != nil {
		r.With(middleware.RequireAuth).Get("/ws", d.Hub.ServeWS)
	}
	if d.Webhook != nil {
		r.Post("/webhooks/xendit/payouts", d.Webhook.PayoutWebhookHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		r.Post("/auth/register", a.register)
		r.Post("/auth/login", a.login)

		r.Get("/products", a.listProducts)
		r.Get("/products/{id}", a.getProduct)
		r.Get("/collections/estimate", a.estimateCollection)
		r.Get("/collections/rates", a.collectionRates)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", a.me)

			r.Get("/collections", a.listCollections)
			r.Post("/collections", a.createCollection)
			r.Get("/collections/{id}", a.getCollection)
			r.Get("/collections/{id}/qr", a.collectionQR)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(utils.RoleCollector))
				r.Post("/collections/{id}/accept", a.acceptCollection)
				r.Post("/collections/{id}/start", a.startCollection)
				r.Post("/collections/{id}/collect", a.markCollected)
				r.Get("/payments", a.listPayments)
			})

			r.With(middleware.RequireRole(utils.RoleAdmin)).
				Post("/collections/{id}/payment", a.settlePayment)

			r.Get("/users/{id}/wallet", a.getWallet)
			r.Get("/users/{id}/wallet/transactions", a.walletTransactions)

			r.With(middleware.RequireRole(utils.RoleFactory)).Post("/products", a.createProduct)

			r.Get("/cart", a.getCart)
			r.Put("/cart/items", a.setCartItem)
			r.Delete("/cart/items/{productId}", a.removeCartItem)

			r.Post("/orders/quote", a.quoteOrder)
			r.Post("/orders", a.placeOrder)
			r.Get("/orders", a.listOrders)
			r.Get("/orders/{id}", a.getOrder)
			r.Post("/orders/{id}/status", a.updateOrderStatus)

			r.With(middleware.RequireRole(utils.RoleAdmin)).Get("/dashboard/admin", a.adminDashboard)
			r.With(middleware.RequireRole(utils.RoleCollector)).Get("/dashboard/collector", a.collectorDashboard)
			r.Get("/dashboard/user", a.userDashboard)

			r.With(middleware.RequireRole(utils.RoleAdmin)).
				Get("/admin/reports/payments.xlsx", a.paymentsReport)
		})
	})

	return r
}
