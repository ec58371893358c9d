// Package gateway собирает HTTP-шлюз оформления подписок: хранилище сессий в Redis,
// клиент основного API, сервисы оформления и кабинета, уведомления и маршруты.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi"
	"golang.org/x/time/rate"

	"github.com/popodpiske/checkout-gateway/internal/api"
	"github.com/popodpiske/checkout-gateway/internal/config"
	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
	"github.com/popodpiske/checkout-gateway/internal/notify"
	"github.com/popodpiske/checkout-gateway/internal/services/checkout"
	"github.com/popodpiske/checkout-gateway/internal/services/orders"
	"github.com/popodpiske/checkout-gateway/internal/session"
	"github.com/popodpiske/checkout-gateway/internal/storage/localstore"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	logger    *slog.Logger
	store     *localstore.Store
	publisher *notify.Publisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	metrics.MustRegister()

	store, err := localstore.InitServer(ctx, cfg.RedisConnection, cfg.Storage)
	if err != nil {
		return nil, err
	}

	notifier := notify.Fanout{notify.NewLogger(logger)}
	var publisher *notify.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = notify.NewPublisher(cfg.RabbitMQ, logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		notifier = append(notifier, publisher)
	}

	sessions := session.NewStore(store, logger)
	sessions.Subscribe(invalidateOrdersOnAuth(store, logger))

	// клиент вызывает ForceLogout, а сервису нужен клиент
	var checkoutService *checkout.Service
	client := api.New(cfg.API, store, func(ctx context.Context) {
		checkoutService.ForceLogout(ctx)
	}, logger)
	checkoutService = checkout.NewService(client, sessions, store, notifier, cfg, logger)
	ordersService := orders.NewService(client, store, sessions, notifier, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Checkout: checkoutService,
		Orders:   ordersService,
		Sessions: sessions,
		Tokens:   client,
		Storage:  store,
		Limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		store:     store,
		publisher: publisher,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close notification publisher", sl.Err(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close session storage", sl.Err(err))
	}
}

// invalidateOrdersOnAuth сбрасывает кэш заказов, когда в сессии меняется пользователь.
func invalidateOrdersOnAuth(store *localstore.Store, logger *slog.Logger) session.Listener {
	return func(sessionID string, prev, next session.State, actions []string) {
		if prev.User.IsLoggedIn == next.User.IsLoggedIn && !slices.Contains(actions, "user/closed") {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := store.InvalidateOrders(ctx, sessionID); err != nil {
			logger.Warn("failed to invalidate orders cache", sl.Session(sessionID), sl.Err(err))
		}
	}
}
