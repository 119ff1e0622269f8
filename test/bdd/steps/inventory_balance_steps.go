package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"github.com/harborline/omscore/internal/domain/inventory"
	"github.com/harborline/omscore/internal/domain/shared"
)

var stepTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type inventoryBalanceContext struct {
	balance *inventory.Balance
	err     error
}

func (ic *inventoryBalanceContext) reset() {
	ic.balance = nil
	ic.err = nil
}

func (ic *inventoryBalanceContext) aBalanceWithOnHandAndAllocated(onHand, allocated int) error {
	ic.balance = inventory.RestoreBalance("SKU-1", "MAIN", onHand, allocated, stepTime)
	return nil
}

func (ic *inventoryBalanceContext) iReserveUnits(qty int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	return ic.balance.Reserve(qty, stepTime)
}

func (ic *inventoryBalanceContext) iAttemptToReserveUnits(qty int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	ic.err = ic.balance.Reserve(qty, stepTime)
	return nil
}

func (ic *inventoryBalanceContext) iAdjustTheBalanceBy(delta int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	return ic.balance.Adjust(delta, stepTime)
}

func (ic *inventoryBalanceContext) iAttemptToAdjustTheBalanceBy(delta int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	ic.err = ic.balance.Adjust(delta, stepTime)
	return nil
}

func (ic *inventoryBalanceContext) iReleaseUnits(qty int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	return ic.balance.Release(qty, stepTime)
}

func (ic *inventoryBalanceContext) theAvailableQuantityShouldBe(expected int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	if ic.balance.Available() != expected {
		return fmt.Errorf("expected available %d, got %d", expected, ic.balance.Available())
	}
	return nil
}

func (ic *inventoryBalanceContext) theOnHandQuantityShouldBe(expected int) error {
	if ic.balance == nil {
		return fmt.Errorf("no balance set up")
	}
	if ic.balance.OnHand() != expected {
		return fmt.Errorf("expected on hand %d, got %d", expected, ic.balance.OnHand())
	}
	return nil
}

func (ic *inventoryBalanceContext) theStockOperationShouldBeRejected() error {
	if ic.err == nil {
		return fmt.Errorf("expected the operation to be rejected, but it succeeded")
	}
	var brErr *shared.BusinessRuleError
	if !errors.As(ic.err, &brErr) {
		return fmt.Errorf("expected a business rule violation, got %v", ic.err)
	}
	return nil
}

// InitializeInventoryBalanceScenario registers inventory balance step definitions.
func InitializeInventoryBalanceScenario(sc *godog.ScenarioContext) {
	ic := &inventoryBalanceContext{}

	sc.Before(func(ctx context.Context, scenario *godog.Scenario) (context.Context, error) {
		ic.reset()
		return ctx, nil
	})

	sc.Step(`^a balance of (\d+) on hand with (\d+) allocated$`, ic.aBalanceWithOnHandAndAllocated)
	sc.Step(`^I reserve (\d+) units$`, ic.iReserveUnits)
	sc.Step(`^I attempt to reserve (\d+) units$`, ic.iAttemptToReserveUnits)
	sc.Step(`^I adjust the balance by (-?\d+)$`, ic.iAdjustTheBalanceBy)
	sc.Step(`^I attempt to adjust the balance by (-?\d+)$`, ic.iAttemptToAdjustTheBalanceBy)
	sc.Step(`^I release (\d+) units$`, ic.iReleaseUnits)
	sc.Step(`^the available quantity should be (\d+)$`, ic.theAvailableQuantityShouldBe)
	sc.Step(`^the on-hand quantity should be (\d+)$`, ic.theOnHandQuantityShouldBe)
	sc.Step(`^the stock operation should be rejected$`, ic.theStockOperationShouldBeRejected)
}
