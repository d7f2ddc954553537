package ports

import (
	"context"
	"errors"

	"github.com/massagesobi/storefront/internal/domains/grants/domain"
)

var (
	ErrNotFound      = errors.New("access grant not found")
	ErrAlreadyIssued = errors.New("access grant already issued for order")
)

// Repository persists access grants. At most one grant exists per order
// reference; Create must fail with ErrAlreadyIssued on a second insert so
// races between issuers collapse to the stored grant.
type Repository interface {
	Create(ctx context.Context, grant *domain.AccessGrant) (*domain.AccessGrant, error)
	GetByOrderReference(ctx context.Context, reference string) (*domain.AccessGrant, error)
}

// InviteSource mints a single-use credential from the downstream restricted
// resource.
type InviteSource interface {
	MintInvite(ctx context.Context, beneficiaryID int64) (token string, err error)
}

// Notifier delivers a grant token to its beneficiary.
type Notifier interface {
	DeliverGrant(ctx context.Context, beneficiaryID int64, token string) error
}

// AccessRecorder flags the beneficiary as entitled; a side-effect target
// owned by the users context.
type AccessRecorder interface {
	MarkAccess(ctx context.Context, beneficiaryID int64) error
}

// IssueInput identifies the order an entitlement belongs to.
type IssueInput struct {
	OrderReference string
	BeneficiaryID  int64
}

// Service exposes entitlement issuance use cases.
type Service interface {
	// EnsureIssued issues the grant for an approved order exactly once;
	// repeated calls return the stored grant without re-minting or
	// re-notifying.
	EnsureIssued(ctx context.Context, input IssueInput) (*domain.AccessGrant, error)
	// Resend is the manual support path: it re-delivers an existing unused
	// grant, or mints one if approval never produced a grant. A redeemed
	// grant is not silently replaced.
	Resend(ctx context.Context, input IssueInput) (*domain.AccessGrant, error)
}
