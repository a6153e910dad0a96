// Package server assembles the Fiber application: admission limits, middleware chain,
// static assets, API docs, metrics and the scan routes.
package server

import (
	"fmt"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"scanreceiver/docs"
	"scanreceiver/internal/auth"
	"scanreceiver/internal/config"
	handlers "scanreceiver/internal/http/handler"
	"scanreceiver/internal/http/middleware"
	"scanreceiver/internal/logging"
	"scanreceiver/internal/metrics"
	"scanreceiver/internal/service"
)

// AssetsPrefix is where files from AppConfig.AssetsDir are served.
const AssetsPrefix = "/assets"

// Deps are the collaborators the HTTP server is built from.
type Deps struct {
	Config   *config.AppConfig
	Scans    service.ScanService
	Logger   *logging.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// New builds the Fiber app. Request bodies above Config.MaxBodyBytes are rejected with 413
// before any handler runs. Multipart bodies are only decoded by the scan handler, after the
// auth guard has passed.
func New(d Deps) (*fiber.App, error) {
	if d.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if d.Scans == nil {
		return nil, fmt.Errorf("scan service is required")
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}

	bodyLimit := d.Config.MaxBodyBytes
	if bodyLimit <= 0 {
		bodyLimit = config.DefaultMaxBodyBytes
	}

	app := fiber.New(fiber.Config{
		AppName:   "scanreceiver",
		BodyLimit: bodyLimit,
		// fasthttp would otherwise decode multipart bodies while reading the request,
		// ahead of every middleware.
		DisablePreParseMultipartForm: true,
		ErrorHandler:                 handlers.ErrorHandler(),
		DisableStartupMessage:        true,
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(d.Registry)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(d.Logger))
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Auth(middleware.AuthConfig{
		Guard:   auth.NewGuard(d.Config.Token),
		Bypass:  middleware.DefaultAuthBypass,
		Logger:  d.Logger,
		Metrics: d.Metrics,
	}))

	app.Static(AssetsPrefix, d.Config.AssetsDir)

	docs.SwaggerInfo.Host = d.Config.AppHost
	app.Get("/swagger/*", swagger.HandlerDefault)

	metricsHandler := promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry})
	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(otelhttp.NewHandler(metricsHandler, "metrics")))

	handlers.RegisterRoutes(app, d.Scans, d.Logger, d.Metrics)

	return app, nil
}
