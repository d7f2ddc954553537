package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	grantsapp "github.com/massagesobi/storefront/internal/domains/grants/application"
	grantsdomain "github.com/massagesobi/storefront/internal/domains/grants/domain"
	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
	ordersdomain "github.com/massagesobi/storefront/internal/domains/orders/domain"
	ordersports "github.com/massagesobi/storefront/internal/domains/orders/ports"
	apierrors "github.com/massagesobi/storefront/internal/shared/errors"
)

type resendAccessResponse struct {
	OrderReference string `json:"orderReference"`
	Status         string `json:"status"`
}

// ResendAccess is the manual support path for a paid order whose grant was
// never issued or never arrived. It re-delivers the existing unused grant
// if one exists rather than minting a second redemption.
func (h *Handlers) ResendAccess(c *gin.Context) {
	reference := c.Param("reference")
	order, err := h.Ledger.GetByReference(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, ordersports.ErrNotFound) {
			apierrors.Respond(c, apierrors.NewNotFoundProblem("order", reference))
			return
		}
		apierrors.RespondError(c, err)
		return
	}
	if order.Status != ordersdomain.StatusApproved {
		apierrors.Respond(c, apierrors.ErrConflict.
			WithDetail("order is not approved").
			WithExtension("status", string(order.Status)))
		return
	}
	_, err = h.Grants.Resend(c.Request.Context(), grantsports.IssueInput{
		OrderReference: order.Reference,
		BeneficiaryID:  order.BeneficiaryID,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resendAccessResponse{OrderReference: order.Reference, Status: "delivered"})
	case errors.Is(err, grantsdomain.ErrGrantExhausted):
		apierrors.Respond(c, apierrors.ErrConflict.WithDetail("access grant already redeemed"))
	case errors.Is(err, grantsapp.ErrIssuanceFailed), errors.Is(err, grantsapp.ErrDeliveryFailed):
		apierrors.Respond(c, apierrors.ErrBadGateway.WithDetail("access delivery failed, retry"))
	default:
		apierrors.RespondError(c, err)
	}
}
