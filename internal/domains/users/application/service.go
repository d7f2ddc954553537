package application

import (
	"context"
	"time"

	"github.com/massagesobi/storefront/internal/domains/users/domain"
	"github.com/massagesobi/storefront/internal/domains/users/ports"
)

// Service exposes the beneficiary side effects the payment core needs.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// TouchActivity stamps the beneficiary's last activity.
func (s *Service) TouchActivity(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	return s.repo.Touch(ctx, id, s.now().UTC())
}

// MarkAccess flags the beneficiary as entitled. Satisfies the grants
// context's AccessRecorder port.
func (s *Service) MarkAccess(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	return s.repo.SetAccess(ctx, id, true)
}

// HasAccess reports the current entitlement flag.
func (s *Service) HasAccess(ctx context.Context, id int64) (bool, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.HasAccess, nil
}
