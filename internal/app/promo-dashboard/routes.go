// Package promodashboard предоставляет маршруты для основного приложения.
package promodashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/promo-dashboard/internal/config"
	adminadd "github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/admin/add"
	admininitialize "github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/admin/initialize"
	adminremove "github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/admin/remove"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/admin/userlist"
	entitlementlist "github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/entitlement/list"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/health"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/service/create"
	servicelist "github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/service/list"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/service/remove"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/service/toggle"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/handlers/service/update"
	"github.com/magabrotheeeer/promo-dashboard/internal/http/middlewarectx"
	jwtlib "github.com/magabrotheeeer/promo-dashboard/internal/lib/jwt"
	adminservice "github.com/magabrotheeeer/promo-dashboard/internal/services/admin"
	catalogservice "github.com/magabrotheeeer/promo-dashboard/internal/services/catalog"
	paymentservice "github.com/magabrotheeeer/promo-dashboard/internal/services/payment"
	reconcileservice "github.com/magabrotheeeer/promo-dashboard/internal/services/reconcile"
	usersservice "github.com/magabrotheeeer/promo-dashboard/internal/services/users"
	"github.com/magabrotheeeer/promo-dashboard/internal/storage/repository"
)

// Services собирает бизнес-логику приложения для регистрации маршрутов.
type Services struct {
	Catalog   *catalogservice.Service
	Admin     *adminservice.Service
	Payment   *paymentservice.Service
	Reconcile *reconcileservice.Service
	Users     *usersservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services, maker jwtlib.Maker,
	adminLimiter middlewarectx.ActionLimiter, signer paymentwebhook.Signer,
	cfg *config.Config, db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	var webhookSigner paymentwebhook.Signer
	if cfg.Gateway.VerifyCallbacks {
		webhookSigner = signer
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Webhook endpoint (без аутентификации, подлинность по подписи)
		r.Post("/payments/webhook", paymentwebhook.New(logger, svc.Reconcile, webhookSigner).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/services", servicelist.New(logger, svc.Catalog).ServeHTTP)
			r.Get("/entitlements", entitlementlist.New(logger, svc.Payment).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, svc.Payment).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				// Назначение первого администратора доступно до появления
				// самих администраторов, поэтому вне админского шлюза.
				r.Post("/initialize", admininitialize.New(logger, svc.Admin).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.AdminMiddleware(logger, svc.Admin))
					r.Use(middlewarectx.ActionRateLimitMiddleware(logger, adminLimiter, "admin"))

					r.Post("/services", create.New(logger, svc.Catalog).ServeHTTP)
					r.Patch("/services/{id}", update.New(logger, svc.Catalog).ServeHTTP)
					r.Delete("/services/{id}", remove.New(logger, svc.Catalog).ServeHTTP)
					r.Post("/services/{id}/toggle", toggle.New(logger, svc.Catalog).ServeHTTP)
					r.Get("/users", userlist.New(logger, svc.Users).ServeHTTP)
					r.Post("/manage", adminadd.New(logger, svc.Admin).ServeHTTP)
					r.Delete("/manage", adminremove.New(logger, svc.Admin).ServeHTTP)
					r.Post("/verify-payment", paymentverify.New(logger, svc.Reconcile).ServeHTTP)
				})
			})
		})
	})

	r.Get("/health", health.New(logger, func() error {
		return repository.CheckDatabaseReady(db)
	}).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
