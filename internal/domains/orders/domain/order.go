package domain

import (
	"errors"
	"time"
)

// Status enumerates order progression. Only pending orders transition;
// approved, declined, and expired are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	StatusExpired  Status = "expired"
)

var (
	ErrInvalidBeneficiary = errors.New("beneficiary id must be greater than zero")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidCurrency    = errors.New("currency is required")
	ErrInvalidStatus      = errors.New("order status is invalid")
	ErrTerminalStatus     = errors.New("order is already in a terminal state")
	ErrNotTerminal        = errors.New("order can only resolve to a terminal state")
)

// Line is one invoiced product position, fixed at order creation.
type Line struct {
	Name       string
	Count      int64
	PriceMinor int64
}

// Order is the ledger entry for one purchase attempt. The reference is
// globally unique and never reused; amount and currency are immutable after
// creation.
type Order struct {
	Reference     string
	BeneficiaryID int64
	ProductID     int64
	AmountMinor   int64
	Currency      string
	Lines         []Line
	Status        Status
	CreatedAt     time.Time
	ResolvedAt    time.Time
}

// NewOrder validates and constructs a pending order.
func NewOrder(ref Reference, amountMinor int64, currency string, lines []Line, createdAt time.Time) (*Order, error) {
	order := &Order{
		Reference:     ref.String(),
		BeneficiaryID: ref.BeneficiaryID,
		ProductID:     ref.ProductID,
		AmountMinor:   amountMinor,
		Currency:      currency,
		Lines:         lines,
		Status:        StatusPending,
		CreatedAt:     createdAt,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.BeneficiaryID <= 0 {
		return ErrInvalidBeneficiary
	}
	if o.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if o.Currency == "" {
		return ErrInvalidCurrency
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Terminal reports whether the order has left the pending state.
func (o *Order) Terminal() bool {
	return o.Status != StatusPending
}

// Resolve moves a pending order to a terminal state, stamping ResolvedAt.
// Resolving an already-terminal order fails; callers rely on this for
// idempotent callback handling.
func (o *Order) Resolve(to Status, at time.Time) error {
	if o.Terminal() {
		return ErrTerminalStatus
	}
	if to == StatusPending || !isValidStatus(to) {
		return ErrNotTerminal
	}
	o.Status = to
	o.ResolvedAt = at
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusApproved, StatusDeclined, StatusExpired:
		return true
	default:
		return false
	}
}

// Product is a sellable catalog entry.
type Product struct {
	ID         int64
	Name       string
	PriceMinor int64
	Currency   string
}
