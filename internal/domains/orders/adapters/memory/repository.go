package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/massagesobi/storefront/internal/domains/orders/domain"
	"github.com/massagesobi/storefront/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order ledger for development and tests.
type Repository struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.Reference]; ok {
		return ports.ErrDuplicateReference
	}
	clone := cloneOrder(order)
	r.orders[order.Reference] = clone
	return nil
}

func (r *Repository) GetByReference(_ context.Context, reference string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[reference]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

// Resolve performs the pending-only transition under the repository lock,
// mirroring the conditional UPDATE of the postgres adapter.
func (r *Repository) Resolve(_ context.Context, reference string, to domain.Status, at time.Time) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[reference]
	if !ok {
		return nil, false, ports.ErrNotFound
	}
	if order.Terminal() {
		return cloneOrder(order), false, nil
	}
	if err := order.Resolve(to, at); err != nil {
		return nil, false, err
	}
	return cloneOrder(order), true, nil
}

func (r *Repository) ExpireStale(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired int64
	for _, order := range r.orders {
		if !order.Terminal() && order.CreatedAt.Before(cutoff) {
			if err := order.Resolve(domain.StatusExpired, time.Now().UTC()); err == nil {
				expired++
			}
		}
	}
	return expired, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Lines = append([]domain.Line(nil), order.Lines...)
	return &clone
}
