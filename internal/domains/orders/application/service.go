package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/massagesobi/storefront/internal/domains/orders/domain"
	"github.com/massagesobi/storefront/internal/domains/orders/ports"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

// Service implements the invoice builder and the callback reconciler on top
// of the order ledger.
type Service struct {
	ledger     ports.Repository
	gateway    ports.Gateway
	issuance   ports.IssuanceTrigger
	signer     *wayforpay.Signer
	merchant   wayforpay.Merchant
	catalog    map[int64]domain.Product
	serviceURL string
	now        func() time.Time
}

// Deps bundles the service collaborators.
type Deps struct {
	Ledger   ports.Repository
	Gateway  ports.Gateway
	Issuance ports.IssuanceTrigger
	Signer   *wayforpay.Signer
	Merchant wayforpay.Merchant
	Catalog  map[int64]domain.Product
	// ServiceURL is the externally reachable callback endpoint handed to
	// the gateway with every invoice.
	ServiceURL string
}

// NewService wires the orders service with its dependencies.
func NewService(deps Deps) *Service {
	return &Service{
		ledger:     deps.Ledger,
		gateway:    deps.Gateway,
		issuance:   deps.Issuance,
		signer:     deps.Signer,
		merchant:   deps.Merchant,
		catalog:    deps.Catalog,
		serviceURL: deps.ServiceURL,
		now:        time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInvoice mints an order reference, writes the pending ledger entry,
// and only then dispatches the signed invoice request. Write-then-send: a
// callback that races the gateway response always finds the order.
func (s *Service) CreateInvoice(ctx context.Context, input ports.CreateInvoiceInput) (*ports.CreateInvoiceResult, error) {
	product, ok := s.catalog[input.ProductID]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownProduct, input.ProductID)
	}
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	createdAt := s.now().UTC()
	ref := domain.NewReference(product.ID, input.BeneficiaryID, createdAt)
	lines := []domain.Line{{Name: product.Name, Count: quantity, PriceMinor: product.PriceMinor}}
	order, err := domain.NewOrder(ref, product.PriceMinor*quantity, product.Currency, lines, createdAt)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Create(ctx, order); err != nil {
		return nil, err
	}

	req := wayforpay.InvoiceRequest{
		TransactionType:    "CREATE_INVOICE",
		MerchantAccount:    s.merchant.Account,
		MerchantDomainName: s.merchant.Domain,
		APIVersion:         1,
		OrderReference:     order.Reference,
		OrderDate:          createdAt.Unix(),
		Amount:             wayforpay.Amount(order.AmountMinor),
		Currency:           order.Currency,
		ServiceURL:         s.serviceURL,
	}
	for _, line := range order.Lines {
		req.ProductName = append(req.ProductName, line.Name)
		req.ProductCount = append(req.ProductCount, line.Count)
		req.ProductPrice = append(req.ProductPrice, wayforpay.Amount(line.PriceMinor))
	}
	req.MerchantSignature = s.signer.Sign(req.SignatureFields()...)

	resp, err := s.gateway.CreateInvoice(ctx, req)
	if err != nil {
		// The pending order stays in the ledger; the sweeper or a manual
		// retry picks it up.
		return &ports.CreateInvoiceResult{Reference: order.Reference},
			fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return &ports.CreateInvoiceResult{Reference: order.Reference, InvoiceURL: resp.InvoiceURL}, nil
}

// HandleCallback verifies and reconciles one inbound confirmation. Every
// rejection happens before any write; redelivered callbacks for terminal
// orders take the idempotent no-op path.
func (s *Service) HandleCallback(ctx context.Context, callback wayforpay.Callback) (*ports.CallbackResult, error) {
	if !callback.Complete() {
		return nil, ErrMalformedCallback
	}
	if !s.signer.Verify(callback.MerchantSignature, callback.SignatureFields()...) {
		return nil, ErrInvalidSignature
	}
	if _, err := domain.ParseReference(callback.OrderReference); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	order, err := s.ledger.GetByReference(ctx, callback.OrderReference)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, err
	}
	if callback.Amount.Minor() != order.AmountMinor || callback.Currency != order.Currency {
		return nil, ErrAmountMismatch
	}

	outcome := wayforpay.MapOutcome(callback.TransactionStatus)
	if order.Terminal() {
		return &ports.CallbackResult{Order: order, Outcome: outcome, Duplicate: true}, nil
	}

	switch outcome {
	case wayforpay.OutcomeApproved:
		return s.approve(ctx, order.Reference, outcome)
	case wayforpay.OutcomeDeclined:
		return s.resolve(ctx, order.Reference, domain.StatusDeclined, outcome)
	case wayforpay.OutcomeExpired:
		return s.resolve(ctx, order.Reference, domain.StatusExpired, outcome)
	default:
		// Interim or unrecognized status: acknowledge, keep the order
		// pending, let the gateway report the final state later.
		return &ports.CallbackResult{Order: order, Outcome: outcome}, nil
	}
}

func (s *Service) approve(ctx context.Context, reference string, outcome wayforpay.Outcome) (*ports.CallbackResult, error) {
	order, fresh, err := s.ledger.Resolve(ctx, reference, domain.StatusApproved, s.now().UTC())
	if err != nil {
		return nil, err
	}
	result := &ports.CallbackResult{Order: order, Outcome: outcome, Fresh: fresh, Duplicate: !fresh}
	if !fresh {
		return result, nil
	}
	// The conditional transition above is the exclusivity lock: only this
	// caller triggers issuance. EnsureIssued is idempotent on its own as
	// defense in depth, and the resend path recovers from failures here.
	if err := s.issuance.EnsureIssued(ctx, order); err == nil {
		result.Issued = true
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, reference string, to domain.Status, outcome wayforpay.Outcome) (*ports.CallbackResult, error) {
	order, fresh, err := s.ledger.Resolve(ctx, reference, to, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &ports.CallbackResult{Order: order, Outcome: outcome, Fresh: fresh, Duplicate: !fresh}, nil
}

var _ ports.Service = (*Service)(nil)
