package ports

import (
	"context"

	"github.com/massagesobi/storefront/internal/domains/orders/domain"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

// CreateInvoiceInput captures a payment intent collected by the storefront.
type CreateInvoiceInput struct {
	BeneficiaryID int64
	ProductID     int64
	Quantity      int64
}

// CreateInvoiceResult reports the minted order and the hosted payment page.
type CreateInvoiceResult struct {
	Reference  string
	InvoiceURL string
}

// CallbackResult describes what a confirmation callback did to the ledger.
type CallbackResult struct {
	Order   *domain.Order
	Outcome wayforpay.Outcome
	// Fresh is true only for the single call that performed a transition.
	Fresh bool
	// Duplicate marks the idempotent no-op path for redelivered callbacks.
	Duplicate bool
	// Issued reports whether grant issuance succeeded for a fresh approval.
	// False with Fresh=true means the order is approved without a grant and
	// is recoverable through the manual resend path.
	Issued bool
}

// Service exposes the invoice builder and callback reconciler.
type Service interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*CreateInvoiceResult, error)
	HandleCallback(ctx context.Context, callback wayforpay.Callback) (*CallbackResult, error)
}

// Gateway is the outbound payment-creation collaborator.
type Gateway interface {
	CreateInvoice(ctx context.Context, req wayforpay.InvoiceRequest) (*wayforpay.InvoiceResponse, error)
}

// IssuanceTrigger schedules entitlement issuance for a freshly approved
// order. Implementations must be idempotent per order reference.
type IssuanceTrigger interface {
	EnsureIssued(ctx context.Context, order *domain.Order) error
}
