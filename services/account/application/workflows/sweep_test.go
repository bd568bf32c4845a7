package workflows

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.temporal.io/sdk/testsuite"

	"github.com/ghuser/ordermgmt/pkg/logger"
	appsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
)

type fakeSweeper struct {
	reminded, deactivated int
	remindFailures        int32
	remindCalls           atomic.Int32
	deactivateCalls       atomic.Int32
}

func (f *fakeSweeper) SendReminders(context.Context) (int, error) {
	if f.remindCalls.Add(1) <= f.remindFailures {
		return 0, errors.New("database unavailable")
	}
	return f.reminded, nil
}

func (f *fakeSweeper) DeactivateExpired(context.Context) (int, error) {
	f.deactivateCalls.Add(1)
	return f.deactivated, nil
}

func runWorkflow(t *testing.T, s Sweeper) (*testsuite.TestWorkflowEnvironment, appsvcs.SweepResult) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(VerificationSweepWorkflow)
	env.RegisterActivity(&Activities{Sweeper: s})

	env.ExecuteWorkflow(VerificationSweepWorkflow)
	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	var res appsvcs.SweepResult
	if env.GetWorkflowError() == nil {
		if err := env.GetWorkflowResult(&res); err != nil {
			t.Fatalf("workflow result: %v", err)
		}
	}
	return env, res
}

func TestVerificationSweepWorkflow(t *testing.T) {
	s := &fakeSweeper{reminded: 3, deactivated: 2}
	env, res := runWorkflow(t, s)
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	if res.Reminded != 3 || res.Deactivated != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestVerificationSweepWorkflow_RetriesActivity(t *testing.T) {
	s := &fakeSweeper{reminded: 1, remindFailures: 2}
	env, res := runWorkflow(t, s)
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	if got := s.remindCalls.Load(); got != 3 {
		t.Errorf("expected 3 reminder attempts, got %d", got)
	}
	if res.Reminded != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestVerificationSweepWorkflow_GivesUpAfterMaxAttempts(t *testing.T) {
	s := &fakeSweeper{remindFailures: 100}
	env, _ := runWorkflow(t, s)
	if env.GetWorkflowError() == nil {
		t.Fatal("expected workflow error")
	}
	if got := s.remindCalls.Load(); got != activityOptions.RetryPolicy.MaximumAttempts {
		t.Errorf("expected %d attempts, got %d", activityOptions.RetryPolicy.MaximumAttempts, got)
	}
	if s.deactivateCalls.Load() != 0 {
		t.Error("deactivation must not run after reminders fail")
	}
}

func TestCronEvery(t *testing.T) {
	if got := cronEvery(time.Hour); got != "@every 1h0m0s" {
		t.Fatalf("unexpected cron spec %q", got)
	}
}

func TestRunSweepLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		RunSweepLoop(ctx, func(context.Context) (appsvcs.SweepResult, error) {
			if calls.Add(1) == 1 {
				return appsvcs.SweepResult{}, errors.New("transient")
			}
			return appsvcs.SweepResult{Reminded: 1}, nil
		}, time.Millisecond, logger.Discard())
	}()

	deadline := time.After(5 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatal("sweep loop did not keep running after a failure")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep loop did not stop on cancel")
	}
}
