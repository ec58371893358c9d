// Package main Checkout Gateway API
//
// @title           Popodpiske Checkout Gateway API
// @version         1.0
// @description     Шлюз оформления подписки на курс: ссылка, вход по телефону, график платежей, заказы
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey SessionID
// @in header
// @name X-Session-ID
// @description UUID сессии браузера, возвращается шлюзом в каждом ответе.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/popodpiske/checkout-gateway/internal/app/gateway"
	"github.com/popodpiske/checkout-gateway/internal/config"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
)

func main() {
	// суммы в ответах шлюза отдаются числами, как в ответах основного API
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	logger.Info("starting checkout-gateway", slog.String("env", cfg.Env))
	logger.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := gateway.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("checkout-gateway stopped gracefully")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
