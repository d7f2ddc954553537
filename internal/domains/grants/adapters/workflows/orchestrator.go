package workflows

import (
	"context"
	"errors"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
	ordersdomain "github.com/massagesobi/storefront/internal/domains/orders/domain"
	ordersports "github.com/massagesobi/storefront/internal/domains/orders/ports"
	issuancewf "github.com/massagesobi/storefront/internal/durable/temporal/workflows/issuance"
)

var (
	_ ordersports.IssuanceTrigger = (*TemporalIssuance)(nil)
	_ ordersports.IssuanceTrigger = (*InlineIssuance)(nil)
)

// TemporalIssuance starts the durable issuance workflow for an approved
// order. The workflow ID is derived from the order reference, so a second
// start for the same order joins the running execution instead of issuing
// twice.
type TemporalIssuance struct {
	client    client.Client
	taskQueue string
}

// NewTemporalIssuance wires a Temporal client into the trigger.
func NewTemporalIssuance(c client.Client) *TemporalIssuance {
	return &TemporalIssuance{client: c, taskQueue: issuancewf.IssuanceTaskQueue}
}

// EnsureIssued schedules grant issuance and waits for it to finish.
func (t *TemporalIssuance) EnsureIssued(ctx context.Context, order *ordersdomain.Order) error {
	if t == nil || t.client == nil {
		return errors.New("temporal issuance trigger not configured")
	}
	options := client.StartWorkflowOptions{
		ID:        issuancewf.WorkflowID(order.Reference),
		TaskQueue: t.taskQueue,
	}
	input := issuancewf.IssuanceWorkflowInput{
		OrderReference: order.Reference,
		BeneficiaryID:  order.BeneficiaryID,
	}
	run, err := t.client.ExecuteWorkflow(ctx, options, issuancewf.IssuanceWorkflow, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			// Another caller owns the issuance for this order.
			return nil
		}
		return err
	}
	return run.Get(ctx, nil)
}

// InlineIssuance executes issuance synchronously without Temporal, useful
// for tests or when no cluster is reachable.
type InlineIssuance struct {
	service grantsports.Service
}

// NewInlineIssuance wraps the grants service for synchronous execution.
func NewInlineIssuance(service grantsports.Service) *InlineIssuance {
	return &InlineIssuance{service: service}
}

// EnsureIssued delegates to the grants service directly.
func (i *InlineIssuance) EnsureIssued(ctx context.Context, order *ordersdomain.Order) error {
	if i == nil || i.service == nil {
		return errors.New("inline issuance trigger not configured")
	}
	_, err := i.service.EnsureIssued(ctx, grantsports.IssueInput{
		OrderReference: order.Reference,
		BeneficiaryID:  order.BeneficiaryID,
	})
	return err
}
