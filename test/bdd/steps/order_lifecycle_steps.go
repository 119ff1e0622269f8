package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/harborline/omscore/internal/domain/order"
	"github.com/harborline/omscore/internal/domain/shared"
)

type orderLifecycleContext struct {
	order *order.Order
	err   error
}

func (oc *orderLifecycleContext) reset() {
	oc.order = nil
	oc.err = nil
}

func (oc *orderLifecycleContext) aPendingOrderWithLines(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("expected a header row and at least one line")
	}
	items := make([]order.Item, 0, len(table.Rows)-1)
	for i, row := range table.Rows[1:] {
		if len(row.Cells) != 3 {
			return fmt.Errorf("expected columns sku, quantity, unit_price")
		}
		var qty int
		if _, err := fmt.Sscanf(row.Cells[1].Value, "%d", &qty); err != nil {
			return fmt.Errorf("bad quantity %q: %w", row.Cells[1].Value, err)
		}
		price, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return fmt.Errorf("bad unit price %q: %w", row.Cells[2].Value, err)
		}
		items = append(items, order.Item{
			ID:        fmt.Sprintf("line-%d", i+1),
			OrderID:   "ord-1",
			SKU:       row.Cells[0].Value,
			Quantity:  qty,
			UnitPrice: price,
		})
	}

	o, err := order.New("ord-1", "cust-1", "USD", items, stepTime)
	if err != nil {
		return err
	}
	oc.order = o
	return nil
}

func (oc *orderLifecycleContext) theOrderTransitionsTo(raw string) error {
	if oc.order == nil {
		return fmt.Errorf("no order set up")
	}
	status, err := order.ParseStatus(raw)
	if err != nil {
		return err
	}
	return oc.order.TransitionTo(status, stepTime)
}

func (oc *orderLifecycleContext) iAttemptToTransitionTheOrderTo(raw string) error {
	if oc.order == nil {
		return fmt.Errorf("no order set up")
	}
	status, err := order.ParseStatus(raw)
	if err != nil {
		return err
	}
	oc.err = oc.order.TransitionTo(status, stepTime)
	return nil
}

func (oc *orderLifecycleContext) theOrderStatusShouldBe(expected string) error {
	if oc.order == nil {
		return fmt.Errorf("no order set up")
	}
	if string(oc.order.Status()) != expected {
		return fmt.Errorf("expected status %q, got %q", expected, oc.order.Status())
	}
	return nil
}

func (oc *orderLifecycleContext) theOrderTotalShouldBe(raw string) error {
	if oc.order == nil {
		return fmt.Errorf("no order set up")
	}
	expected, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("bad expected total %q: %w", raw, err)
	}
	if !expected.Equal(oc.order.TotalAmount()) {
		return fmt.Errorf("expected total %s, got %s", expected, oc.order.TotalAmount())
	}
	return nil
}

func (oc *orderLifecycleContext) iAttemptToRemoveLine(lineID string) error {
	if oc.order == nil {
		return fmt.Errorf("no order set up")
	}
	_, oc.err = oc.order.RemoveItem(lineID, stepTime)
	return nil
}

func (oc *orderLifecycleContext) iAttemptToUpdateTheShippingAddress() error {
	if oc.order == nil {
		return fmt.Errorf("no order set up")
	}
	oc.err = oc.order.UpdateShippingAddress("12 Pier Rd", stepTime)
	return nil
}

func (oc *orderLifecycleContext) theOrderTransitionShouldBeRejected() error {
	if oc.err == nil {
		return fmt.Errorf("expected the transition to be rejected, but it succeeded")
	}
	var isErr *shared.InvalidStatusError
	if !errors.As(oc.err, &isErr) {
		return fmt.Errorf("expected an invalid status error, got %v", oc.err)
	}
	return nil
}

func (oc *orderLifecycleContext) theOrderChangeShouldBeRejected() error {
	if oc.err == nil {
		return fmt.Errorf("expected the change to be rejected, but it succeeded")
	}
	var brErr *shared.BusinessRuleError
	if errors.As(oc.err, &brErr) {
		return nil
	}
	var isErr *shared.InvalidStatusError
	if errors.As(oc.err, &isErr) {
		return nil
	}
	return fmt.Errorf("expected a domain rejection, got %v", oc.err)
}

// InitializeOrderLifecycleScenario registers order lifecycle step definitions.
func InitializeOrderLifecycleScenario(sc *godog.ScenarioContext) {
	oc := &orderLifecycleContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		oc.reset()
		return ctx, nil
	})

	sc.Step(`^a pending order with lines:$`, oc.aPendingOrderWithLines)
	sc.Step(`^the order transitions to "([^"]*)"$`, oc.theOrderTransitionsTo)
	sc.Step(`^I attempt to transition the order to "([^"]*)"$`, oc.iAttemptToTransitionTheOrderTo)
	sc.Step(`^the order status should be "([^"]*)"$`, oc.theOrderStatusShouldBe)
	sc.Step(`^the order total should be "([^"]*)"$`, oc.theOrderTotalShouldBe)
	sc.Step(`^I attempt to remove line "([^"]*)"$`, oc.iAttemptToRemoveLine)
	sc.Step(`^I attempt to update the shipping address$`, oc.iAttemptToUpdateTheShippingAddress)
	sc.Step(`^the order transition should be rejected$`, oc.theOrderTransitionShouldBeRejected)
	sc.Step(`^the order change should be rejected$`, oc.theOrderChangeShouldBeRejected)
}
