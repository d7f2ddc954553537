package ports

import (
	"context"
	"errors"
	"time"

	"github.com/massagesobi/storefront/internal/domains/users/domain"
)

var ErrNotFound = errors.New("user not found")

// Repository persists beneficiary records.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Touch upserts the user and stamps LastActivity.
	Touch(ctx context.Context, id int64, at time.Time) error
	// SetAccess upserts the user and flips the access flag.
	SetAccess(ctx context.Context, id int64, granted bool) error
}
