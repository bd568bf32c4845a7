// Package workflows runs the periodic email verification sweep, on Temporal
// when it is enabled and on a ticker otherwise.
package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ghuser/ordermgmt/pkg/logger"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
)

// SweepWorkflowID is the fixed ID of the scheduled sweep; one runs per namespace.
const SweepWorkflowID = "account-verification-sweep"

// Sweeper is the account service surface the sweep drives.
type Sweeper interface {
	SendReminders(ctx context.Context) (int, error)
	DeactivateExpired(ctx context.Context) (int, error)
}

// Activities exposes Sweeper to Temporal. Register a pointer to it.
type Activities struct {
	Sweeper Sweeper
}

// SendReminders emails accounts that are due a verification reminder.
func (a *Activities) SendReminders(ctx context.Context) (int, error) {
	return a.Sweeper.SendReminders(ctx)
}

// DeactivateExpired deactivates accounts left unverified too long.
func (a *Activities) DeactivateExpired(ctx context.Context) (int, error) {
	return a.Sweeper.DeactivateExpired(ctx)
}

var activityOptions = workflow.ActivityOptions{
	StartToCloseTimeout: 2 * time.Minute,
	RetryPolicy: &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    5,
	},
}

// VerificationSweepWorkflow sends due reminders, then deactivates expired
// accounts. Reminders go first so an account crossing both thresholds in one
// interval is deactivated rather than reminded.
func VerificationSweepWorkflow(ctx workflow.Context) (appsvcs.SweepResult, error) {
	ctx = workflow.WithActivityOptions(ctx, activityOptions)
	var a *Activities
	var res appsvcs.SweepResult

	if err := workflow.ExecuteActivity(ctx, a.SendReminders).Get(ctx, &res.Reminded); err != nil {
		return res, fmt.Errorf("send reminders: %w", err)
	}
	if err := workflow.ExecuteActivity(ctx, a.DeactivateExpired).Get(ctx, &res.Deactivated); err != nil {
		return res, fmt.Errorf("deactivate expired: %w", err)
	}

	workflow.GetLogger(ctx).Info("verification sweep finished",
		"reminded", res.Reminded, "deactivated", res.Deactivated)
	return res, nil
}

// RegisterWorker registers the sweep workflow and its activities on w.
func RegisterWorker(w worker.Registry, s Sweeper) {
	w.RegisterWorkflow(VerificationSweepWorkflow)
	w.RegisterActivity(&Activities{Sweeper: s})
}

// StartSweepSchedule starts the sweep as a cron workflow running every
// interval. An already running schedule is left in place.
func StartSweepSchedule(ctx context.Context, c client.Client, taskQueue string, interval time.Duration, log logger.Logger) error {
	if interval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	_, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                                       SweepWorkflowID,
		TaskQueue:                                taskQueue,
		CronSchedule:                             cronEvery(interval),
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, VerificationSweepWorkflow)
	if err != nil {
		if temporal.IsWorkflowExecutionAlreadyStartedError(err) {
			log.Info("verification sweep already scheduled", "workflow_id", SweepWorkflowID)
			return nil
		}
		return fmt.Errorf("start verification sweep: %w", err)
	}
	log.Info("verification sweep scheduled", "workflow_id", SweepWorkflowID, "interval", interval)
	return nil
}

func cronEvery(d time.Duration) string {
	return "@every " + d.String()
}

// RunSweepLoop runs sweep every interval until ctx is done. Failures are
// logged and retried on the next tick.
func RunSweepLoop(ctx context.Context, sweep func(context.Context) (appsvcs.SweepResult, error), interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := sweep(ctx)
			if err != nil {
				log.ErrorContext(ctx, "verification sweep failed", "error", err)
				continue
			}
			log.DebugContext(ctx, "verification sweep finished",
				"reminded", res.Reminded, "deactivated", res.Deactivated)
		}
	}
}
