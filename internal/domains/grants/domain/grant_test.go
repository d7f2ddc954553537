package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewGrant_CapacityOne(t *testing.T) {
	grant, err := NewGrant(42, "order_1_42_1700000000", "https://t.me/+abc", time.Unix(1700000000, 0).UTC())
	require.NoError(t, err)
	require.Equal(t, 1, grant.CapacityRemaining)
	require.True(t, grant.Active())
}

func TestNewGrant_Validation(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	_, err := NewGrant(0, "order_1_42_1700000000", "tok", now)
	require.ErrorIs(t, err, ErrInvalidGrant)
	_, err = NewGrant(42, "", "tok", now)
	require.ErrorIs(t, err, ErrInvalidGrant)
	_, err = NewGrant(42, "order_1_42_1700000000", "", now)
	require.ErrorIs(t, err, ErrInvalidGrant)
}

func TestRedeem_SingleUse(t *testing.T) {
	grant, err := NewGrant(42, "order_1_42_1700000000", "https://t.me/+abc", time.Unix(1700000000, 0).UTC())
	require.NoError(t, err)

	redeemedAt := grant.CreatedAt.Add(time.Hour)
	require.NoError(t, grant.Redeem(redeemedAt))
	require.True(t, grant.Used)
	require.False(t, grant.Active())
	require.Equal(t, redeemedAt, grant.RedeemedAt)

	require.ErrorIs(t, grant.Redeem(redeemedAt.Add(time.Minute)), ErrGrantExhausted)
}
