package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/massagesobi/storefront/internal/wayforpay"
)

func decodeAck(t *testing.T, body []byte) wayforpay.Ack {
	t.Helper()
	var ack wayforpay.Ack
	require.NoError(t, json.Unmarshal(body, &ack))
	return ack
}

func TestPaymentCallback_ApprovedAcceptAck(t *testing.T) {
	h := newHarness(t)
	reference := h.createOrder(t)

	rec := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", h.signedCallback(reference, 29000, wayforpay.TxStatusApproved))
	require.Equal(t, http.StatusOK, rec.Code)

	ack := decodeAck(t, rec.Body.Bytes())
	require.Equal(t, reference, ack.OrderReference)
	require.Equal(t, wayforpay.AckAccept, ack.Status)
	require.Equal(t, h.now.Unix(), ack.Time)
	require.True(t, h.signer.Verify(ack.Signature, ack.OrderReference, ack.Status, strconv.FormatInt(ack.Time, 10)))

	require.Equal(t, 1, h.notifier.count())
}

func TestPaymentCallback_DuplicateDeliveryIdenticalAck(t *testing.T) {
	h := newHarness(t)
	reference := h.createOrder(t)
	callback := h.signedCallback(reference, 29000, wayforpay.TxStatusApproved)

	first := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", callback)
	second := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", callback)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	require.JSONEq(t, first.Body.String(), second.Body.String())

	// One grant, one delivery, despite two confirmations.
	require.Equal(t, 1, h.notifier.count())
	grant, err := h.grants.GetByOrderReference(context.Background(), reference)
	require.NoError(t, err)
	require.True(t, grant.Active())
}

func TestPaymentCallback_RejectionsAreUniform(t *testing.T) {
	h := newHarness(t)
	reference := h.createOrder(t)

	forged := h.signedCallback(reference, 29000, wayforpay.TxStatusApproved)
	forged.MerchantSignature = "00000000000000000000000000000000"

	unknown := h.signedCallback("order_9_77_1700000000", 29000, wayforpay.TxStatusApproved)

	mismatched := h.signedCallback(reference, 1, wayforpay.TxStatusApproved)

	var bodies []wayforpay.Ack
	for _, callback := range []wayforpay.Callback{forged, unknown, mismatched} {
		rec := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", callback)
		// Rejections are indistinguishable from outside: same status code,
		// same refuse ack shape, no detail about the cause.
		require.Equal(t, http.StatusOK, rec.Code)
		ack := decodeAck(t, rec.Body.Bytes())
		require.Equal(t, wayforpay.AckRefuse, ack.Status)
		require.Equal(t, callback.OrderReference, ack.OrderReference)
		require.True(t, h.signer.Verify(ack.Signature, ack.OrderReference, ack.Status, strconv.FormatInt(ack.Time, 10)))
		bodies = append(bodies, ack)
	}
	require.Len(t, bodies, 3)

	require.Equal(t, 0, h.notifier.count())
}

func TestPaymentCallback_GarbageBody(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", "not a callback")
	require.Equal(t, http.StatusOK, rec.Code)
	ack := decodeAck(t, rec.Body.Bytes())
	require.Equal(t, wayforpay.AckRefuse, ack.Status)
	require.Empty(t, ack.OrderReference)
}

func TestPaymentCallback_ApprovalMarksBeneficiaryAccess(t *testing.T) {
	h := newHarness(t)
	reference := h.createOrder(t)

	// Invoice creation already touched the beneficiary.
	user, err := h.users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	require.False(t, user.HasAccess)

	rec := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", h.signedCallback(reference, 29000, wayforpay.TxStatusApproved))
	require.Equal(t, http.StatusOK, rec.Code)

	user, err = h.users.GetByID(context.Background(), 42)
	require.NoError(t, err)
	require.True(t, user.HasAccess)
}

func TestPaymentCallback_DeclinedStillAccepted(t *testing.T) {
	h := newHarness(t)
	reference := h.createOrder(t)

	rec := h.do(t, http.MethodPost, "/api/v1/wayforpay/callback", h.signedCallback(reference, 29000, wayforpay.TxStatusDeclined))
	require.Equal(t, http.StatusOK, rec.Code)
	ack := decodeAck(t, rec.Body.Bytes())
	require.Equal(t, wayforpay.AckAccept, ack.Status)
	require.Equal(t, 0, h.notifier.count())
}
