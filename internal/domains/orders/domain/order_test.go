package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pendingOrder(t *testing.T) *Order {
	t.Helper()
	createdAt := time.Unix(1700000000, 0).UTC()
	ref := NewReference(1, 42, createdAt)
	order, err := NewOrder(ref, 29000, "UAH", []Line{{Name: "Course", Count: 1, PriceMinor: 29000}}, createdAt)
	require.NoError(t, err)
	return order
}

func TestNewOrder_Validation(t *testing.T) {
	createdAt := time.Unix(1700000000, 0).UTC()

	_, err := NewOrder(Reference{ProductID: 1, IssuedAt: createdAt}, 29000, "UAH", nil, createdAt)
	require.ErrorIs(t, err, ErrInvalidBeneficiary)

	ref := NewReference(1, 42, createdAt)
	_, err = NewOrder(ref, 0, "UAH", nil, createdAt)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewOrder(ref, 29000, "", nil, createdAt)
	require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestResolve_PendingToTerminal(t *testing.T) {
	order := pendingOrder(t)
	resolvedAt := order.CreatedAt.Add(time.Minute)

	require.NoError(t, order.Resolve(StatusApproved, resolvedAt))
	require.Equal(t, StatusApproved, order.Status)
	require.Equal(t, resolvedAt, order.ResolvedAt)
	require.True(t, order.Terminal())
}

func TestResolve_TerminalOrderRejectsTransition(t *testing.T) {
	order := pendingOrder(t)
	require.NoError(t, order.Resolve(StatusDeclined, order.CreatedAt.Add(time.Minute)))

	err := order.Resolve(StatusApproved, order.CreatedAt.Add(2*time.Minute))
	require.ErrorIs(t, err, ErrTerminalStatus)
	require.Equal(t, StatusDeclined, order.Status)
}

func TestResolve_RequiresTerminalTarget(t *testing.T) {
	order := pendingOrder(t)
	require.ErrorIs(t, order.Resolve(StatusPending, order.CreatedAt), ErrNotTerminal)
	require.ErrorIs(t, order.Resolve(Status("refunded"), order.CreatedAt), ErrNotTerminal)
	require.False(t, order.Terminal())
}
