package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersports "github.com/massagesobi/storefront/internal/domains/orders/ports"
	"github.com/massagesobi/storefront/internal/wayforpay"
)

const tracerName = "github.com/massagesobi/storefront/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
// Rejected callbacks are logged at warning level only; the decorated
// service already guarantees they caused no writes.
type Service struct {
	inner   ordersports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core orders service.
func New(inner ordersports.Service, opts ...Option) ordersports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateInvoice(ctx context.Context, input ordersports.CreateInvoiceInput) (*ordersports.CreateInvoiceResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.CreateInvoice",
		trace.WithAttributes(
			attribute.Int64("order.beneficiary_id", input.BeneficiaryID),
			attribute.Int64("order.product_id", input.ProductID),
		))
	defer span.End()

	result, err := s.inner.CreateInvoice(ctx, input)
	if err != nil {
		reference := ""
		if result != nil {
			reference = result.Reference
		}
		return result, s.handleError(ctx, span, err, "invoice creation failed",
			slog.Int64("beneficiary_id", input.BeneficiaryID), slog.String("reference", reference))
	}
	s.metrics.recordInvoiceCreated(ctx)
	s.logInfo(ctx, "invoice created",
		slog.String("reference", result.Reference), slog.Int64("beneficiary_id", input.BeneficiaryID))
	return result, nil
}

func (s *Service) HandleCallback(ctx context.Context, callback wayforpay.Callback) (*ordersports.CallbackResult, error) {
	ctx, span := s.tracer.Start(ctx, "OrdersService.HandleCallback",
		trace.WithAttributes(attribute.String("order.reference", callback.OrderReference)))
	defer span.End()

	result, err := s.inner.HandleCallback(ctx, callback)
	if err != nil {
		// Rejection detail stays in logs; the webhook response is uniform.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.recordCallbackRejected(ctx)
		s.logWarn(ctx, "callback rejected",
			slog.String("reference", callback.OrderReference), slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("callback.outcome", result.Outcome.String()),
		attribute.Bool("callback.duplicate", result.Duplicate),
	)
	s.metrics.recordCallbackAccepted(ctx, result.Outcome, result.Duplicate)
	if result.Fresh && result.Outcome == wayforpay.OutcomeApproved && !result.Issued {
		s.logWarn(ctx, "order approved but grant issuance failed, resend required",
			slog.String("reference", callback.OrderReference))
	}
	s.logInfo(ctx, "callback reconciled",
		slog.String("reference", callback.OrderReference),
		slog.String("outcome", result.Outcome.String()),
		slog.Bool("duplicate", result.Duplicate))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logWarn(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	invoicesCreated   metric.Int64Counter
	callbacksAccepted metric.Int64Counter
	callbacksRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	invoicesCreated, _ := m.Int64Counter("orders.service.invoices_created",
		metric.WithDescription("Number of invoices created"))
	callbacksAccepted, _ := m.Int64Counter("orders.service.callbacks_accepted",
		metric.WithDescription("Number of gateway callbacks reconciled"))
	callbacksRejected, _ := m.Int64Counter("orders.service.callbacks_rejected",
		metric.WithDescription("Number of gateway callbacks rejected before any write"))
	return serviceMetrics{
		invoicesCreated:   invoicesCreated,
		callbacksAccepted: callbacksAccepted,
		callbacksRejected: callbacksRejected,
	}
}

func (m serviceMetrics) recordInvoiceCreated(ctx context.Context) {
	if m.invoicesCreated != nil {
		m.invoicesCreated.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordCallbackAccepted(ctx context.Context, outcome wayforpay.Outcome, duplicate bool) {
	if m.callbacksAccepted != nil {
		m.callbacksAccepted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcome.String()),
			attribute.Bool("duplicate", duplicate),
		))
	}
}

func (m serviceMetrics) recordCallbackRejected(ctx context.Context) {
	if m.callbacksRejected != nil {
		m.callbacksRejected.Add(ctx, 1)
	}
}

var _ ordersports.Service = (*Service)(nil)
