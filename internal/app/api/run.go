package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	"github.com/massagesobi/storefront/internal/clients/telegram"
	grantslocal "github.com/massagesobi/storefront/internal/domains/grants/adapters/local"
	grantsmemory "github.com/massagesobi/storefront/internal/domains/grants/adapters/memory"
	grantspostgres "github.com/massagesobi/storefront/internal/domains/grants/adapters/persistence/postgres"
	grantsworkflows "github.com/massagesobi/storefront/internal/domains/grants/adapters/workflows"
	grantsapp "github.com/massagesobi/storefront/internal/domains/grants/application"
	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
	ordersmemory "github.com/massagesobi/storefront/internal/domains/orders/adapters/memory"
	ordersobs "github.com/massagesobi/storefront/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/massagesobi/storefront/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/massagesobi/storefront/internal/domains/orders/application"
	ordersports "github.com/massagesobi/storefront/internal/domains/orders/ports"
	usersmemory "github.com/massagesobi/storefront/internal/domains/users/adapters/memory"
	userspostgres "github.com/massagesobi/storefront/internal/domains/users/adapters/persistence/postgres"
	usersapp "github.com/massagesobi/storefront/internal/domains/users/application"
	usersports "github.com/massagesobi/storefront/internal/domains/users/ports"
	"github.com/massagesobi/storefront/internal/platform/migrations"
	platformobservability "github.com/massagesobi/storefront/internal/platform/observability"
	platformpostgres "github.com/massagesobi/storefront/internal/platform/postgres"
	transporthttp "github.com/massagesobi/storefront/internal/transport/http"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

// Run boots the storefront HTTP API with observability, repositories, the
// payment gateway client, and grant issuance wired.
func Run(ctx context.Context) error {
	const serviceName = "storefront-api"
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
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
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	ledger := buildOrderLedger(db, logger)
	grantRepo := buildGrantRepository(db, logger)
	userService := usersapp.NewService(buildUserRepository(db, logger))

	invites, notifier := buildDelivery(cfg, logger)
	grantService := grantsapp.NewService(grantRepo, invites, notifier, userService)

	var issuance ordersports.IssuanceTrigger = grantsworkflows.NewInlineIssuance(grantService)
	if cfg.TemporalDisabled {
		logger.Info("Temporal disabled, running inline grant issuance")
	} else if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal unavailable, running inline grant issuance", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		issuance = grantsworkflows.NewTemporalIssuance(temporalClient)
		logger.Info("Temporal grant issuance enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	signer := wayforpay.NewSigner(cfg.MerchantSecret, cfg.SignatureProfile)
	gateway, err := wayforpay.NewClient(cfg.GatewayURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build gateway client: %w", err)
	}
	orderService := ordersobs.New(
		ordersapp.NewService(ordersapp.Deps{
			Ledger:     ledger,
			Gateway:    gateway,
			Issuance:   issuance,
			Signer:     signer,
			Merchant:   cfg.Merchant,
			Catalog:    cfg.Catalog(),
			ServiceURL: cfg.ServiceURL,
		}),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	router := transporthttp.NewRouter(&transporthttp.Handlers{
		Orders: orderService,
		Grants: grantService,
		Ledger: ledger,
		Users:  userService,
		Signer: signer,
	})
	router.Use(otelgin.Middleware(serviceName))

	addr := ":" + cfg.Port
	logger.Info("storefront API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("storefront API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func buildOrderLedger(db *gorm.DB, logger *slog.Logger) ordersports.Repository {
	if db == nil {
		return ordersmemory.NewRepository()
	}
	logger.Info("order ledger configured with postgres")
	return orderspostgres.NewRepository(db)
}

func buildGrantRepository(db *gorm.DB, logger *slog.Logger) grantsports.Repository {
	if db == nil {
		return grantsmemory.NewRepository()
	}
	logger.Info("grant repository configured with postgres")
	return grantspostgres.NewRepository(db)
}

func buildUserRepository(db *gorm.DB, logger *slog.Logger) usersports.Repository {
	if db == nil {
		return usersmemory.NewRepository()
	}
	logger.Info("user repository configured with postgres")
	return userspostgres.NewRepository(db)
}

// buildDelivery wires the Telegram invite source and notifier, falling back
// to locally minted tokens with log-only delivery when the bot is not
// configured.
func buildDelivery(cfg Config, logger *slog.Logger) (grantsports.InviteSource, grantsports.Notifier) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		logger.Warn("Telegram bot not configured, grants will be minted locally and logged")
		return grantslocal.NewTokenSource(), grantslocal.NewLogNotifier(logger)
	}
	bot, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		logger.Warn("failed to build Telegram client, grants will be minted locally and logged", slog.String("error", err.Error()))
		return grantslocal.NewTokenSource(), grantslocal.NewLogNotifier(logger)
	}
	logger.Info("grant delivery configured with Telegram", slog.Int64("chatId", cfg.TelegramChatID))
	return bot, bot
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
