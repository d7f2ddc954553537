package issuance

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	grantsports "github.com/massagesobi/storefront/internal/domains/grants/ports"
)

// Activities groups Temporal activities for the grants bounded context.
type Activities struct {
	grants grantsports.Service
}

// NewActivities wires the grants service into the activities bundle.
func NewActivities(grants grantsports.Service) *Activities {
	return &Activities{grants: grants}
}

// EnsureGrant issues the entitlement for an approved order. Retries are
// safe: the grants service returns the stored grant on replays.
func (a *Activities) EnsureGrant(ctx context.Context, input grantsports.IssueInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.grants == nil {
		logger.Error("grant activity not initialized", "orderReference", input.OrderReference)
		return errors.New("grant activity not initialized")
	}
	logger.Info("EnsureGrant activity started", "orderReference", input.OrderReference)
	grant, err := a.grants.EnsureIssued(ctx, input)
	if err != nil {
		logger.Error("EnsureGrant activity failed", "orderReference", input.OrderReference, "error", err)
		return err
	}
	logger.Info("EnsureGrant activity completed",
		"orderReference", input.OrderReference, "grantId", grant.ID)
	return nil
}
