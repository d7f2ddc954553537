package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/massagesobi/storefront/internal/domains/orders/application"
	ordersports "github.com/massagesobi/storefront/internal/domains/orders/ports"
	apierrors "github.com/massagesobi/storefront/internal/shared/errors"
)

type createInvoiceRequest struct {
	BeneficiaryID int64 `json:"beneficiaryId" binding:"required,gt=0"`
	ProductID     int64 `json:"productId" binding:"required,gt=0"`
	Quantity      int64 `json:"quantity"`
}

type createInvoiceResponse struct {
	OrderReference string `json:"orderReference"`
	InvoiceURL     string `json:"invoiceUrl"`
}

// CreateInvoice collects a payment intent and returns the hosted payment
// page for it.
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	if h.Users != nil {
		// Best effort; a bookkeeping failure must not block the purchase.
		_ = h.Users.TouchActivity(c.Request.Context(), req.BeneficiaryID)
	}
	result, err := h.Orders.CreateInvoice(c.Request.Context(), ordersports.CreateInvoiceInput{
		BeneficiaryID: req.BeneficiaryID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, createInvoiceResponse{
			OrderReference: result.Reference,
			InvoiceURL:     result.InvoiceURL,
		})
	case errors.Is(err, ordersapp.ErrUnknownProduct):
		apierrors.Respond(c, apierrors.NewNotFoundProblem("product", req.ProductID))
	case errors.Is(err, ordersapp.ErrGatewayUnavailable):
		problem := apierrors.ErrBadGateway.WithDetail("invoice creation failed, retry")
		if result != nil && result.Reference != "" {
			problem = problem.WithExtension("orderReference", result.Reference)
		}
		apierrors.Respond(c, problem)
	default:
		apierrors.RespondError(c, err)
	}
}
