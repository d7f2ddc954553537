package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	grantslocal "github.com/massagesobi/storefront/internal/domains/grants/adapters/local"
	grantsmemory "github.com/massagesobi/storefront/internal/domains/grants/adapters/memory"
	grantsworkflows "github.com/massagesobi/storefront/internal/domains/grants/adapters/workflows"
	grantsapp "github.com/massagesobi/storefront/internal/domains/grants/application"
	ordersmemory "github.com/massagesobi/storefront/internal/domains/orders/adapters/memory"
	ordersapp "github.com/massagesobi/storefront/internal/domains/orders/application"
	ordersdomain "github.com/massagesobi/storefront/internal/domains/orders/domain"
	usersmemory "github.com/massagesobi/storefront/internal/domains/users/adapters/memory"
	usersapp "github.com/massagesobi/storefront/internal/domains/users/application"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

type stubGateway struct{ fail bool }

func (g *stubGateway) CreateInvoice(_ context.Context, req wayforpay.InvoiceRequest) (*wayforpay.InvoiceResponse, error) {
	if g.fail {
		return nil, wayforpay.ErrGatewayUnavailable
	}
	return &wayforpay.InvoiceResponse{
		ReasonCode: wayforpay.ReasonCodeOK,
		InvoiceURL: "https://secure.wayforpay.com/invoice/" + req.OrderReference,
	}, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	delivered []string
}

func (n *recordingNotifier) DeliverGrant(_ context.Context, _ int64, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, token)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}

type harness struct {
	router   *gin.Engine
	ledger   *ordersmemory.Repository
	grants   *grantsmemory.Repository
	users    *usersmemory.Repository
	notifier *recordingNotifier
	signer   *wayforpay.Signer
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		ledger:   ordersmemory.NewRepository(),
		grants:   grantsmemory.NewRepository(),
		notifier: &recordingNotifier{},
		signer:   wayforpay.NewSigner("s3cret", wayforpay.ProfileHMACMD5),
		now:      time.Unix(1700000500, 0).UTC(),
	}
	h.users = usersmemory.NewRepository()
	userService := usersapp.NewService(h.users)
	grantService := grantsapp.NewService(h.grants, grantslocal.NewTokenSource(), h.notifier, userService)
	orderService := ordersapp.NewService(ordersapp.Deps{
		Ledger:   h.ledger,
		Gateway:  &stubGateway{},
		Issuance: grantsworkflows.NewInlineIssuance(grantService),
		Signer:   h.signer,
		Merchant: wayforpay.Merchant{Account: "MERCH1", Domain: "domain.com"},
		Catalog: map[int64]ordersdomain.Product{
			1: {ID: 1, Name: "Course", PriceMinor: 29000, Currency: "UAH"},
		},
		ServiceURL: "https://bot.example.com/api/v1/wayforpay/callback",
	})
	orderService.WithClock(func() time.Time { return h.now })

	handlers := &Handlers{
		Orders: orderService,
		Grants: grantService,
		Ledger: h.ledger,
		Users:  userService,
		Signer: h.signer,
	}
	handlers.WithClock(func() time.Time { return h.now })
	h.router = NewRouter(handlers)
	return h
}

func newFailingGatewayHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	userService := usersapp.NewService(usersmemory.NewRepository())
	grantService := grantsapp.NewService(h.grants, grantslocal.NewTokenSource(), h.notifier, userService)
	orderService := ordersapp.NewService(ordersapp.Deps{
		Ledger:   h.ledger,
		Gateway:  &stubGateway{fail: true},
		Issuance: grantsworkflows.NewInlineIssuance(grantService),
		Signer:   h.signer,
		Merchant: wayforpay.Merchant{Account: "MERCH1", Domain: "domain.com"},
		Catalog: map[int64]ordersdomain.Product{
			1: {ID: 1, Name: "Course", PriceMinor: 29000, Currency: "UAH"},
		},
		ServiceURL: "https://bot.example.com/api/v1/wayforpay/callback",
	})
	handlers := &Handlers{Orders: orderService, Grants: grantService, Ledger: h.ledger, Signer: h.signer}
	handlers.WithClock(func() time.Time { return h.now })
	h.router = NewRouter(handlers)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// createOrder drives the public invoice endpoint and returns the minted
// order reference.
func (h *harness) createOrder(t *testing.T) string {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/invoices", gin.H{"beneficiaryId": 42, "productId": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		OrderReference string `json:"orderReference"`
		InvoiceURL     string `json:"invoiceUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OrderReference)
	return resp.OrderReference
}

func (h *harness) signedCallback(reference string, amountMinor int64, status string) wayforpay.Callback {
	callback := wayforpay.Callback{
		MerchantAccount:   "MERCH1",
		OrderReference:    reference,
		Amount:            wayforpay.Amount(amountMinor),
		Currency:          "UAH",
		AuthCode:          "123456",
		CardPan:           "41****1234",
		TransactionStatus: status,
		ReasonCode:        wayforpay.ReasonCodeOK,
	}
	callback.MerchantSignature = h.signer.Sign(callback.SignatureFields()...)
	return callback
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
