package memory

import (
	"context"
	"sync"

	"github.com/massagesobi/storefront/internal/domains/grants/domain"
	"github.com/massagesobi/storefront/internal/domains/grants/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory grant store for development and tests.
type Repository struct {
	mu     sync.Mutex
	grants map[string]*domain.AccessGrant
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{grants: map[string]*domain.AccessGrant{}}
}

func (r *Repository) Create(_ context.Context, grant *domain.AccessGrant) (*domain.AccessGrant, error) {
	if err := grant.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.grants[grant.OrderReference]; ok {
		return nil, ports.ErrAlreadyIssued
	}
	r.nextID++
	clone := *grant
	clone.ID = r.nextID
	r.grants[grant.OrderReference] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetByOrderReference(_ context.Context, reference string) (*domain.AccessGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grant, ok := r.grants[reference]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *grant
	return &clone, nil
}
