// Package http exposes the storefront payment API over gin: invoice
// creation, the gateway confirmation webhook, and the manual access resend
// path.
package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
	ordersports "github.com/massagesobi/storefront/internal/domains/orders/ports"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

// ActivityRecorder stamps beneficiary activity as requests come in.
type ActivityRecorder interface {
	TouchActivity(ctx context.Context, id int64) error
}

// Handlers bundles the services the API surface depends on.
type Handlers struct {
	Orders ordersports.Service
	Grants grantsports.Service
	Ledger ordersports.Repository
	Users  ActivityRecorder
	Signer *wayforpay.Signer

	now func() time.Time
}

// WithClock overrides the acknowledgment timestamp source for tests.
func (h *Handlers) WithClock(now func() time.Time) {
	if now != nil {
		h.now = now
	}
}

func (h *Handlers) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// NewRouter assembles the gin engine with all routes registered.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", h.Health)

	v1 := router.Group("/api/v1")
	v1.POST("/invoices", h.CreateInvoice)
	v1.POST("/wayforpay/callback", h.PaymentCallback)
	v1.POST("/orders/:reference/access/resend", h.ResendAccess)

	return router
}
