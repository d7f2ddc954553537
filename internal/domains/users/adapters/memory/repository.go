package memory

import (
	"context"
	"sync"
	"time"

	"github.com/massagesobi/storefront/internal/domains/users/domain"
	"github.com/massagesobi/storefront/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory beneficiary store for development and tests.
type Repository struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func NewRepository() *Repository {
	return &Repository{users: map[int64]*domain.User{}}
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) Touch(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.LastActivity = at
		return nil
	}
	r.users[id] = &domain.User{ID: id, LastActivity: at}
	return nil
}

func (r *Repository) SetAccess(_ context.Context, id int64, granted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.HasAccess = granted
		return nil
	}
	r.users[id] = &domain.User{ID: id, HasAccess: granted}
	return nil
}
