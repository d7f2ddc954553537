package issuance

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
)

const (
	// IssuanceWorkflowName is the public identifier for registering the workflow.
	IssuanceWorkflowName = "grants.workflows.Issuance"
	// IssuanceTaskQueue is the queue consumed by the worker processing issuance.
	IssuanceTaskQueue = "GRANT_ISSUANCE"
	// EnsureGrantActivityName is executed by the workflow; the activity is
	// idempotent per order reference.
	EnsureGrantActivityName = "grants.activities.EnsureGrant"
)

// WorkflowID derives a deterministic execution ID so one order can only
// ever run one issuance workflow.
func WorkflowID(orderReference string) string {
	return "grant-issuance-" + orderReference
}

// IssuanceWorkflowInput carries the approved order's identity.
type IssuanceWorkflowInput struct {
	OrderReference string
	BeneficiaryID  int64
}

// IssuanceWorkflow drives the single idempotent EnsureGrant activity with
// retries, surviving worker crashes between order approval and grant
// delivery.
func IssuanceWorkflow(ctx workflow.Context, input IssuanceWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("IssuanceWorkflow started", "orderReference", input.OrderReference)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 2 * time.Second,
			MaximumAttempts: 5,
		},
	})
	err := workflow.ExecuteActivity(ctx, EnsureGrantActivityName, grantsports.IssueInput{
		OrderReference: input.OrderReference,
		BeneficiaryID:  input.BeneficiaryID,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("IssuanceWorkflow failed", "orderReference", input.OrderReference, "error", err)
		return err
	}
	logger.Info("IssuanceWorkflow completed", "orderReference", input.OrderReference)
	return nil
}
