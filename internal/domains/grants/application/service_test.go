package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	grantsmemory "github.com/massagesobi/storefront/internal/domains/grants/adapters/memory"
	"github.com/massagesobi/storefront/internal/domains/grants/domain"
	"github.com/massagesobi/storefront/internal/domains/grants/ports"
)

type fakeInviteSource struct {
	minted int
	err    error
}

func (f *fakeInviteSource) MintInvite(_ context.Context, beneficiaryID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.minted++
	return fmt.Sprintf("https://t.me/+invite%d-%d", beneficiaryID, f.minted), nil
}

type fakeNotifier struct {
	delivered []string
	err       error
}

func (f *fakeNotifier) DeliverGrant(_ context.Context, _ int64, token string) error {
	if f.err != nil {
		return f.err
	}
	f.delivered = append(f.delivered, token)
	return nil
}

type fakeAccessRecorder struct {
	marked []int64
	err    error
}

func (f *fakeAccessRecorder) MarkAccess(_ context.Context, beneficiaryID int64) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, beneficiaryID)
	return nil
}

type grantFixture struct {
	service  *Service
	repo     *grantsmemory.Repository
	invites  *fakeInviteSource
	notifier *fakeNotifier
	access   *fakeAccessRecorder
}

func newGrantFixture(t *testing.T) *grantFixture {
	t.Helper()
	f := &grantFixture{
		repo:     grantsmemory.NewRepository(),
		invites:  &fakeInviteSource{},
		notifier: &fakeNotifier{},
		access:   &fakeAccessRecorder{},
	}
	f.service = NewService(f.repo, f.invites, f.notifier, f.access)
	return f
}

var input = ports.IssueInput{OrderReference: "order_1_42_1700000000_a1b2c3", BeneficiaryID: 42}

func TestEnsureIssued_MintsPersistsDelivers(t *testing.T) {
	f := newGrantFixture(t)

	grant, err := f.service.EnsureIssued(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, input.OrderReference, grant.OrderReference)
	require.Equal(t, 1, grant.CapacityRemaining)
	require.True(t, grant.Active())
	require.Equal(t, []string{grant.Token}, f.notifier.delivered)
	require.Equal(t, []int64{42}, f.access.marked)
}

func TestEnsureIssued_Idempotent(t *testing.T) {
	f := newGrantFixture(t)

	first, err := f.service.EnsureIssued(context.Background(), input)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := f.service.EnsureIssued(context.Background(), input)
		require.NoError(t, err)
		require.Equal(t, first.Token, again.Token)
	}
	require.Equal(t, 1, f.invites.minted)
	require.Len(t, f.notifier.delivered, 1)
}

func TestEnsureIssued_MintFailureLeavesNothingBehind(t *testing.T) {
	f := newGrantFixture(t)
	f.invites.err = errors.New("bot api down")

	_, err := f.service.EnsureIssued(context.Background(), input)
	require.ErrorIs(t, err, ErrIssuanceFailed)

	_, err = f.repo.GetByOrderReference(context.Background(), input.OrderReference)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestEnsureIssued_DeliveryFailureKeepsGrant(t *testing.T) {
	f := newGrantFixture(t)
	f.notifier.err = errors.New("chat unreachable")

	grant, err := f.service.EnsureIssued(context.Background(), input)
	require.ErrorIs(t, err, ErrDeliveryFailed)
	require.NotNil(t, grant)

	// The grant survives for the resend path to pick up.
	stored, err := f.repo.GetByOrderReference(context.Background(), input.OrderReference)
	require.NoError(t, err)
	require.Equal(t, grant.Token, stored.Token)

	f.notifier.err = nil
	resent, err := f.service.Resend(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, grant.Token, resent.Token)
	require.Equal(t, 1, f.invites.minted)
}

func TestResend_ReusesUnredeemedGrant(t *testing.T) {
	f := newGrantFixture(t)

	grant, err := f.service.EnsureIssued(context.Background(), input)
	require.NoError(t, err)

	resent, err := f.service.Resend(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, grant.Token, resent.Token)
	require.Equal(t, 1, f.invites.minted)
	require.Equal(t, []string{grant.Token, grant.Token}, f.notifier.delivered)
}

func TestResend_RefusesRedeemedGrant(t *testing.T) {
	f := newGrantFixture(t)

	grant, err := domain.NewGrant(input.BeneficiaryID, input.OrderReference, "https://t.me/+redeemed", time.Unix(1700000000, 0).UTC())
	require.NoError(t, err)
	require.NoError(t, grant.Redeem(grant.CreatedAt.Add(time.Minute)))
	_, err = f.repo.Create(context.Background(), grant)
	require.NoError(t, err)

	_, err = f.service.Resend(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrGrantExhausted)
	require.Empty(t, f.notifier.delivered)
	require.Zero(t, f.invites.minted)
}

func TestResend_IssuesWhenNoGrantExists(t *testing.T) {
	f := newGrantFixture(t)

	grant, err := f.service.Resend(context.Background(), input)
	require.NoError(t, err)
	require.True(t, grant.Active())
	require.Equal(t, 1, f.invites.minted)
}
