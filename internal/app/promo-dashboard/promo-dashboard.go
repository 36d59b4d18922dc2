// Package promodashboard собирает приложение: хранилище, миграции, кеш,
// платёжный шлюз, публикацию событий и HTTP-сервер с маршрутами.
package promodashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/promo-dashboard/internal/cache"
	"github.com/magabrotheeeer/promo-dashboard/internal/config"
	jwtlib "github.com/magabrotheeeer/promo-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/promo-dashboard/internal/migrations"
	"github.com/magabrotheeeer/promo-dashboard/internal/paymentgateway"
	"github.com/magabrotheeeer/promo-dashboard/internal/rabbitmq"
	adminservice "github.com/magabrotheeeer/promo-dashboard/internal/services/admin"
	catalogservice "github.com/magabrotheeeer/promo-dashboard/internal/services/catalog"
	paymentservice "github.com/magabrotheeeer/promo-dashboard/internal/services/payment"
	reconcileservice "github.com/magabrotheeeer/promo-dashboard/internal/services/reconcile"
	usersservice "github.com/magabrotheeeer/promo-dashboard/internal/services/users"
	"github.com/magabrotheeeer/promo-dashboard/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и долгоживущие подключения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создаёт приложение: подключает PostgreSQL, применяет миграции,
// поднимает Redis и RabbitMQ (опционально) и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	// Публикация событий сверки опциональна: пустая строка подключения
	// отключает RabbitMQ, сверка работает без него.
	var publisher reconcileservice.EventPublisher
	if cfg.RabbitMQConnection != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, []rabbitmq.QueueConfig{
			{QueueName: "payment_events", RoutingKey: "payment.reconciled"},
		})
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	}

	gatewayClient := paymentgateway.NewClient(cfg.Gateway)
	maker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	adminLimiter := cache.NewLimiter(cacheRedis, cfg.AdminLimit, cfg.AdminWindow, logger)

	catalogService := catalogservice.New(db, cacheRedis, logger)
	adminService := adminservice.New(db, logger)
	paymentService := paymentservice.New(db, gatewayClient, cfg.Gateway, logger)
	usersService := usersservice.New(db, logger)

	// Перепроверка статуса у шлюза и проверка подписи callback включаются
	// одним флагом: без него сверка доверяет телу webhook как есть.
	var reverify reconcileservice.GatewayClient
	if cfg.Gateway.VerifyCallbacks {
		reverify = gatewayClient
	}
	reconcileService := reconcileservice.New(db, reverify, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Catalog:   catalogService,
		Admin:     adminService,
		Payment:   paymentService,
		Reconcile: reconcileService,
		Users:     usersService,
	}, maker, adminLimiter, gatewayClient, cfg, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
