package domain

import (
	"errors"
	"time"
)

var (
	ErrGrantExhausted = errors.New("access grant already redeemed")
	ErrInvalidGrant   = errors.New("access grant is invalid")
)

// AccessGrant is a single-use credential tied to one approved order. A
// capacity of one means it can be redeemed by exactly one identity once.
type AccessGrant struct {
	ID                int64
	BeneficiaryID     int64
	OrderReference    string
	Token             string
	CapacityRemaining int
	Used              bool
	CreatedAt         time.Time
	RedeemedAt        time.Time
}

// NewGrant mints a capacity-1 grant for the order.
func NewGrant(beneficiaryID int64, orderReference, token string, createdAt time.Time) (*AccessGrant, error) {
	grant := &AccessGrant{
		BeneficiaryID:     beneficiaryID,
		OrderReference:    orderReference,
		Token:             token,
		CapacityRemaining: 1,
		CreatedAt:         createdAt,
	}
	if err := grant.Validate(); err != nil {
		return nil, err
	}
	return grant, nil
}

// Validate enforces invariants on the grant.
func (g *AccessGrant) Validate() error {
	if g.BeneficiaryID <= 0 || g.OrderReference == "" || g.Token == "" {
		return ErrInvalidGrant
	}
	return nil
}

// Active reports whether the grant can still be redeemed.
func (g *AccessGrant) Active() bool {
	return !g.Used && g.CapacityRemaining > 0
}

// Redeem consumes one unit of capacity; the grant flips to used when none
// remains.
func (g *AccessGrant) Redeem(at time.Time) error {
	if !g.Active() {
		return ErrGrantExhausted
	}
	g.CapacityRemaining--
	if g.CapacityRemaining == 0 {
		g.Used = true
	}
	g.RedeemedAt = at
	return nil
}
