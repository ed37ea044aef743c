package api

import (
	"github.com/Behyna/subscription-engine/internal/api/middleware"
	v1 "github.com/Behyna/subscription-engine/internal/api/v1"
	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const prefixV1 = "/api/v1"

type Security struct {
	Auth          fiber.Handler
	Subscriptions service.SubscriptionService
}

func SetupRoutes(app *fiber.App, handler *v1.Handler, security Security, m *metrics.Metrics, logger *zap.Logger) {
	app.Use(middleware.TrackID())
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))

	app.Get("/ping", handler.Pong)
	app.Get("/health", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	user := app.Group(prefixV1, security.Auth)
	user.Post("/payments", handler.InitiatePayment)
	user.Get("/payments", handler.ListPayments)
	user.Get("/payments/:reference", handler.GetPayment)
	user.Get("/subscriptions/:service", handler.GetSubscription)
	user.Get("/services/:service/access",
		middleware.RequireSubscription(security.Subscriptions, middleware.ServiceFromParam("service")),
		handler.ServiceAccess)

	admin := user.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.Get("/transactions/totals", handler.Totals)
	admin.Patch("/transactions/:reference", handler.UpdateTransaction)
	admin.Patch("/transactions/:reference/status", handler.UpdateStatus)
	admin.Delete("/transactions/:reference", handler.DeleteTransaction)
	admin.Get("/pollers", handler.ListPollers)
	admin.Post("/transactions/:reference/cancel-poller", handler.CancelPoller)
	admin.Post("/decay", handler.RunDecay)
}
