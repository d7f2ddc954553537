package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/massagesobi/storefront/internal/domains/grants/domain"
	"github.com/massagesobi/storefront/internal/domains/grants/ports"
)

var (
	// ErrIssuanceFailed means no grant exists for the order yet; the order
	// stays approved and the operation is safe to retry.
	ErrIssuanceFailed = errors.New("entitlement issuance failed")
	// ErrDeliveryFailed means the grant is persisted but the beneficiary
	// was not notified; recover through Resend.
	ErrDeliveryFailed = errors.New("grant delivery failed")
)

// Service coordinates minting, persisting, and delivering access grants.
type Service struct {
	repo     ports.Repository
	invites  ports.InviteSource
	notifier ports.Notifier
	access   ports.AccessRecorder
	now      func() time.Time
}

// NewService wires the grants service with its collaborators.
func NewService(repo ports.Repository, invites ports.InviteSource, notifier ports.Notifier, access ports.AccessRecorder) *Service {
	return &Service{
		repo:     repo,
		invites:  invites,
		notifier: notifier,
		access:   access,
		now:      time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// EnsureIssued is idempotent per order reference: a stored grant short-
// circuits without re-minting or re-notifying, so redelivered approvals and
// workflow retries are harmless.
func (s *Service) EnsureIssued(ctx context.Context, input ports.IssueInput) (*domain.AccessGrant, error) {
	existing, err := s.repo.GetByOrderReference(ctx, input.OrderReference)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.issue(ctx, input)
}

// Resend re-delivers an existing unused grant rather than unconditionally
// minting a second one; a redeemed grant is refused so a single purchase
// never silently buys two redemptions.
func (s *Service) Resend(ctx context.Context, input ports.IssueInput) (*domain.AccessGrant, error) {
	existing, err := s.repo.GetByOrderReference(ctx, input.OrderReference)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if !existing.Active() {
			return existing, domain.ErrGrantExhausted
		}
		if err := s.notifier.DeliverGrant(ctx, existing.BeneficiaryID, existing.Token); err != nil {
			return existing, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		return existing, nil
	}
	return s.issue(ctx, input)
}

func (s *Service) issue(ctx context.Context, input ports.IssueInput) (*domain.AccessGrant, error) {
	token, err := s.invites.MintInvite(ctx, input.BeneficiaryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}
	grant, err := domain.NewGrant(input.BeneficiaryID, input.OrderReference, token, s.now().UTC())
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.Create(ctx, grant)
	if err != nil {
		if errors.Is(err, ports.ErrAlreadyIssued) {
			// Lost a race with a concurrent issuer; the stored grant wins.
			return s.repo.GetByOrderReference(ctx, input.OrderReference)
		}
		return nil, fmt.Errorf("%w: %v", ErrIssuanceFailed, err)
	}
	if err := s.access.MarkAccess(ctx, input.BeneficiaryID); err != nil {
		return saved, fmt.Errorf("%w: record access: %v", ErrDeliveryFailed, err)
	}
	if err := s.notifier.DeliverGrant(ctx, saved.BeneficiaryID, saved.Token); err != nil {
		return saved, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return saved, nil
}

var _ ports.Service = (*Service)(nil)
