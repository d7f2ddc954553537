package ports

import (
	"context"
	"errors"
	"time"

	"github.com/massagesobi/storefront/internal/domains/orders/domain"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrDuplicateReference = errors.New("order reference already exists")
)

// Repository is the durable order ledger.
//
// Resolve is the serialization point for concurrent callbacks: it
// transitions the order only while it is still pending (a conditional
// write acting as a compare-and-swap) and reports whether this call
// performed the transition. Exactly one caller per order observes
// fresh=true; everyone else sees the already-resolved row.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	Resolve(ctx context.Context, reference string, to domain.Status, at time.Time) (order *domain.Order, fresh bool, err error)
	// ExpireStale transitions pending orders created before the cutoff to
	// expired and returns how many rows changed.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}
