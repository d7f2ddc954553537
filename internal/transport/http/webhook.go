package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/massagesobi/storefront/internal/wayforpay"
)

// PaymentCallback receives payment confirmations from the gateway.
//
// This is the adversarial boundary: the transport is unauthenticated and
// anyone can POST here. Every rejection responds with the same signed
// "refuse" acknowledgment and HTTP 200 regardless of cause, so a prober
// cannot tell a bad signature from an unknown order. Detail lives in the
// service logs only. Accepted and redelivered callbacks get the signed
// "accept" acknowledgment the gateway expects; redelivery is safe because
// reconciliation is idempotent.
func (h *Handlers) PaymentCallback(c *gin.Context) {
	var callback wayforpay.Callback
	if err := c.ShouldBindJSON(&callback); err != nil {
		h.ack(c, "", wayforpay.AckRefuse)
		return
	}
	result, err := h.Orders.HandleCallback(c.Request.Context(), callback)
	if err != nil {
		h.ack(c, callback.OrderReference, wayforpay.AckRefuse)
		return
	}
	h.ack(c, result.Order.Reference, wayforpay.AckAccept)
}

func (h *Handlers) ack(c *gin.Context, orderReference, status string) {
	c.JSON(http.StatusOK, wayforpay.NewAck(h.Signer, orderReference, status, h.clock().Unix()))
}
