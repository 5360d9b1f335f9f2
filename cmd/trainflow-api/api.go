// Package main provides the trainflow API server implementation.
package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/trainflow/pkg/eventbus"
	"github.com/dukex/trainflow/pkg/metrics"
	"github.com/dukex/trainflow/pkg/persistence"
	"github.com/dukex/trainflow/pkg/registry"
	"github.com/dukex/trainflow/pkg/services"
	"github.com/dukex/trainflow/pkg/sessions"
	"github.com/dukex/trainflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	sessions    sessions.Store
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	sessions sessions.Store,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		sessions:    sessions,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	opts := []services.Option{services.WithLogger(a.logger)}

	if a.tracer != nil {
		opts = append(opts, services.WithTracer(a.tracer))
	}

	if a.eventBus != nil {
		opts = append(opts, services.WithPublisher(a.eventBus))
	}

	workflowService := services.NewWorkflow(a.persistence, a.registry, opts...)
	editorService := services.NewEditor(a.sessions, workflowService, a.registry, opts...)
	instanceService := services.NewInstance(a.persistence, workflowService, a.registry.Catalog(), opts...)

	handlers := web.NewAPIHandlers(workflowService, editorService, instanceService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker(healthcheck.Config{
		Probe: func(c fiber.Ctx) bool {
			_, ok := workflowService.HealthCheck(c.Context())

			return ok
		},
	}))

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Trainflow API")
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	handlers.Register(app)

	return app
}

// Start serves the API until ctx is cancelled.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		err := app.Shutdown()
		if err != nil {
			a.logger.Error("Failed to shut down API server", "error", err)
		}
	}()

	return app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
}
