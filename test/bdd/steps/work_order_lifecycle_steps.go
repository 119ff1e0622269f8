package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/harborline/omscore/internal/domain/shared"
	"github.com/harborline/omscore/internal/domain/workorder"
)

type workOrderLifecycleContext struct {
	workOrder *workorder.WorkOrder
	err       error
}

func (wc *workOrderLifecycleContext) reset() {
	wc.workOrder = nil
	wc.err = nil
}

func (wc *workOrderLifecycleContext) aNewWorkOrder() error {
	w, err := workorder.New("wo-1", "bom-1", "Assemble valve block", "", workorder.PriorityNormal,
		[]workorder.Part{{ItemID: "SKU-1", Quantity: 4}}, nil, 6, stepTime)
	if err != nil {
		return err
	}
	wc.workOrder = w
	return nil
}

func (wc *workOrderLifecycleContext) theWorkOrderTransitionsThrough(path string) error {
	if wc.workOrder == nil {
		return fmt.Errorf("no work order set up")
	}
	at := stepTime
	for _, raw := range strings.Split(path, ",") {
		status := workorder.Status(strings.TrimSpace(raw))
		if err := wc.workOrder.TransitionTo(status, at); err != nil {
			return fmt.Errorf("transition to %s: %w", status, err)
		}
	}
	return nil
}

func (wc *workOrderLifecycleContext) iAttemptToTransitionTheWorkOrderTo(raw string) error {
	if wc.workOrder == nil {
		return fmt.Errorf("no work order set up")
	}
	wc.err = wc.workOrder.TransitionTo(workorder.Status(raw), stepTime)
	return nil
}

func (wc *workOrderLifecycleContext) iAttemptToAssignTheWorkOrder() error {
	if wc.workOrder == nil {
		return fmt.Errorf("no work order set up")
	}
	wc.err = wc.workOrder.Assign("tech-7", stepTime)
	return nil
}

func (wc *workOrderLifecycleContext) theWorkOrderStatusShouldBe(expected string) error {
	if wc.workOrder == nil {
		return fmt.Errorf("no work order set up")
	}
	if string(wc.workOrder.Status()) != expected {
		return fmt.Errorf("expected status %q, got %q", expected, wc.workOrder.Status())
	}
	return nil
}

func (wc *workOrderLifecycleContext) theWorkOrderShouldRecordAStartTime() error {
	if wc.workOrder == nil {
		return fmt.Errorf("no work order set up")
	}
	if wc.workOrder.StartedAt() == nil {
		return fmt.Errorf("expected a start time to be recorded")
	}
	return nil
}

func (wc *workOrderLifecycleContext) theWorkOrderShouldRecordACompletionTime() error {
	if wc.workOrder == nil {
		return fmt.Errorf("no work order set up")
	}
	if wc.workOrder.CompletedAt() == nil {
		return fmt.Errorf("expected a completion time to be recorded")
	}
	return nil
}

func (wc *workOrderLifecycleContext) theWorkOrderOperationShouldBeRejected() error {
	if wc.err == nil {
		return fmt.Errorf("expected the operation to be rejected, but it succeeded")
	}
	var isErr *shared.InvalidStatusError
	if errors.As(wc.err, &isErr) {
		return nil
	}
	var brErr *shared.BusinessRuleError
	if errors.As(wc.err, &brErr) {
		return nil
	}
	return fmt.Errorf("expected a domain rejection, got %v", wc.err)
}

// InitializeWorkOrderLifecycleScenario registers work order lifecycle step definitions.
func InitializeWorkOrderLifecycleScenario(sc *godog.ScenarioContext) {
	wc := &workOrderLifecycleContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		wc.reset()
		return ctx, nil
	})

	sc.Step(`^a new work order$`, wc.aNewWorkOrder)
	sc.Step(`^the work order transitions through "([^"]*)"$`, wc.theWorkOrderTransitionsThrough)
	sc.Step(`^I attempt to transition the work order to "([^"]*)"$`, wc.iAttemptToTransitionTheWorkOrderTo)
	sc.Step(`^I attempt to assign the work order$`, wc.iAttemptToAssignTheWorkOrder)
	sc.Step(`^the work order status should be "([^"]*)"$`, wc.theWorkOrderStatusShouldBe)
	sc.Step(`^the work order should record a start time$`, wc.theWorkOrderShouldRecordAStartTime)
	sc.Step(`^the work order should record a completion time$`, wc.theWorkOrderShouldRecordACompletionTime)
	sc.Step(`^the work order operation should be rejected$`, wc.theWorkOrderOperationShouldBeRejected)
}
