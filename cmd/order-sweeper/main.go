package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/massagesobi/storefront/internal/domains/orders/adapters/persistence/postgres"
	platformpostgres "github.com/massagesobi/storefront/internal/platform/postgres"
)

const defaultExpireAfter = 24 * time.Hour

// Expires pending orders whose invoices were never paid. Meant to run on a
// schedule; approved and declined orders are never touched.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot sweep orders")
	}

	cutoff := time.Now().UTC().Add(-expireAfterFromEnv())
	expired, err := orderspostgres.NewRepository(db).ExpireStale(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to expire stale orders: %v", err)
	}
	log.Printf("order sweep completed, expired %d orders", expired)
}

func expireAfterFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("EXPIRE_AFTER_HOURS"))
	if raw == "" {
		return defaultExpireAfter
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultExpireAfter
	}
	return time.Duration(hours) * time.Hour
}
