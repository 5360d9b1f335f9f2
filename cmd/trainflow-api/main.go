package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/trainflow/pkg/cmd"
	"github.com/dukex/trainflow/pkg/log"
	"github.com/dukex/trainflow/pkg/otelhelper"
	"github.com/dukex/trainflow/pkg/sessions"
	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPort = 9091
	serviceName = "trainflow-api"
)

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Edit training workflows and apply them to entities",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (postgres:// or a directory)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.StringFlag{
				Name:    "session-store-url",
				Usage:   "Redis URL for editing sessions, in-memory when empty",
				Sources: cli.EnvVars("SESSION_STORE_URL"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Usage:   "How long an untouched editing session is kept",
				Value:   sessions.DefaultTTL,
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.StringFlag{
				Name:    "catalog-path",
				Usage:   "YAML file describing the entities nodes can bind to",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (json, text)",
				Value:   string(log.FormatJSON),
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(os.Stderr, log.Format(command.String("log-format")), command.String("log-level"))

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing Trainflow API")

			tracer, shutdown, err := newTracer(ctx, command.Bool("otel-enabled"))
			if err != nil {
				return err
			}

			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := shutdown(shutdownCtx); err != nil {
					logger.ErrorContext(ctx, "Failed to shut down tracer", "error", err)
				}
			}()

			entities, err := cmd.NewCatalog(command.String("catalog-path"))
			if err != nil {
				return err
			}

			registry := cmd.NewRegistry(logger, entities)

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			store, err := cmd.NewSessionStore(ctx, logger, command.String("session-store-url"), command.Duration("session-ttl"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close session store", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), command.String("kafka-brokers"), serviceName, logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, registry, store, eventBus, tracer)

			logger.InfoContext(ctx, "Starting API server", "port", command.Int("port"))

			return api.Start(ctx, command.Int("port"))
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := command.Run(ctx, os.Args)
	if err != nil {
		logger.Error("API stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func newTracer(ctx context.Context, enabled bool) (trace.Tracer, otelhelper.ShutdownFunc, error) {
	if !enabled {
		return otelhelper.NoopTracer(), func(context.Context) error { return nil }, nil
	}

	return otelhelper.NewTracer(ctx, serviceName)
}
