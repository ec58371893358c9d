package gateway

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/popodpiske/checkout-gateway/internal/http/handlers/auth"
	"github.com/popodpiske/checkout-gateway/internal/http/handlers/checkout"
	"github.com/popodpiske/checkout-gateway/internal/http/handlers/health"
	"github.com/popodpiske/checkout-gateway/internal/http/handlers/links"
	"github.com/popodpiske/checkout-gateway/internal/http/handlers/orders"
	"github.com/popodpiske/checkout-gateway/internal/http/handlers/sms"
	"github.com/popodpiske/checkout-gateway/internal/http/handlers/state"
	"github.com/popodpiske/checkout-gateway/internal/http/middlewarectx"
)

// CheckoutService все шаги оформления, которые нужны обработчикам.
type CheckoutService interface {
	links.Service
	auth.Service
	checkout.Service
	sms.Service
	orders.Confirmer
}

// Deps зависимости маршрутов.
type Deps struct {
	Checkout CheckoutService
	Orders   orders.Service
	Sessions state.Sessions
	Tokens   state.Tokens
	Storage  health.Pinger
	Limiter  *rate.Limiter
}

// RegisterRoutes регистрирует все маршруты шлюза.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.New(logger, deps.Storage).ServeHTTP)

		// Маршруты сессии браузера
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))
			r.Use(middlewarectx.SessionMiddleware(logger))

			r.Get("/links/{uuid}", links.New(logger, deps.Checkout).ServeHTTP)

			authHandler := auth.New(logger, deps.Checkout)
			r.Post("/auth/check-phone", authHandler.CheckPhone)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/reset-password", authHandler.ResetPassword)
			r.Post("/auth/logout", authHandler.Logout)

			checkoutHandler := checkout.New(logger, deps.Checkout)
			r.Get("/checkout/plan", checkoutHandler.Plan)
			r.Post("/checkout/personal-info", checkoutHandler.PersonalInfo)
			r.Get("/checkout/confirmation", checkoutHandler.Confirmation)
			r.Post("/checkout/order", checkoutHandler.Order)

			smsHandler := sms.New(logger, deps.Checkout)
			r.Post("/sms/send", smsHandler.Send)
			r.Get("/sms/cooldown", smsHandler.Cooldown)
			r.Post("/sms/verify", smsHandler.Verify)

			ordersHandler := orders.New(logger, deps.Orders, deps.Checkout)
			r.Get("/orders", ordersHandler.List)
			r.Delete("/orders/{id}", ordersHandler.Cancel)
			r.Post("/orders/{id}/payment-method", ordersHandler.PaymentMethod)
			r.Post("/orders/{id}/success", ordersHandler.Success)

			r.Get("/state", state.New(logger, deps.Sessions, deps.Tokens).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
