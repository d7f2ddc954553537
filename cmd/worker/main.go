package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"gorm.io/gorm"

	"github.com/massagesobi/storefront/internal/app/api"
	"github.com/massagesobi/storefront/internal/clients/telegram"
	grantslocal "github.com/massagesobi/storefront/internal/domains/grants/adapters/local"
	grantsmemory "github.com/massagesobi/storefront/internal/domains/grants/adapters/memory"
	grantspostgres "github.com/massagesobi/storefront/internal/domains/grants/adapters/persistence/postgres"
	grantsapp "github.com/massagesobi/storefront/internal/domains/grants/application"
	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
	usersmemory "github.com/massagesobi/storefront/internal/domains/users/adapters/memory"
	userspostgres "github.com/massagesobi/storefront/internal/domains/users/adapters/persistence/postgres"
	usersapp "github.com/massagesobi/storefront/internal/domains/users/application"
	usersports "github.com/massagesobi/storefront/internal/domains/users/ports"
	issuancewf "github.com/massagesobi/storefront/internal/durable/temporal/workflows/issuance"
	"github.com/massagesobi/storefront/internal/platform/migrations"
	platformobservability "github.com/massagesobi/storefront/internal/platform/observability"
	platformpostgres "github.com/massagesobi/storefront/internal/platform/postgres"
	issuanceactivities "github.com/massagesobi/storefront/internal/platform/temporal/activities/issuance"
)

func main() {
	ctx := context.Background()
	const serviceName = "storefront-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	userService := usersapp.NewService(buildUserRepository(db, logger))
	invites, notifier := buildDelivery(cfg, logger)
	grantService := grantsapp.NewService(buildGrantRepository(db, logger), invites, notifier, userService)
	activities := issuanceactivities.NewActivities(grantService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, issuancewf.IssuanceTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(issuancewf.IssuanceWorkflow, workflow.RegisterOptions{Name: issuancewf.IssuanceWorkflowName})
	w.RegisterActivityWithOptions(activities.EnsureGrant, activity.RegisterOptions{Name: issuancewf.EnsureGrantActivityName})

	logger.Info("worker listening", slog.String("taskQueue", issuancewf.IssuanceTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildGrantRepository(db *gorm.DB, logger *slog.Logger) grantsports.Repository {
	if db == nil {
		logger.Warn("POSTGRES_DSN not set, worker using in-memory grant repository")
		return grantsmemory.NewRepository()
	}
	logger.Info("worker grant repository configured with postgres")
	return grantspostgres.NewRepository(db)
}

func buildUserRepository(db *gorm.DB, logger *slog.Logger) usersports.Repository {
	if db == nil {
		return usersmemory.NewRepository()
	}
	return userspostgres.NewRepository(db)
}

func buildDelivery(cfg api.Config, logger *slog.Logger) (grantsports.InviteSource, grantsports.Notifier) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		logger.Warn("Telegram bot not configured, worker minting grants locally")
		return grantslocal.NewTokenSource(), grantslocal.NewLogNotifier(logger)
	}
	bot, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		logger.Warn("failed to build Telegram client, worker minting grants locally", slog.String("error", err.Error()))
		return grantslocal.NewTokenSource(), grantslocal.NewLogNotifier(logger)
	}
	return bot, bot
}
