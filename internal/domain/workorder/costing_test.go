package workorder_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/harborline/omscore/internal/domain/workorder"
)

func TestWeightedAverageUnitCost(t *testing.T) {
	// 10 @ 2.00 and 30 @ 4.00 -> 140 / 40 = 3.50
	avg := workorder.WeightedAverageUnitCost(
		[]int{10, 30},
		[]decimal.Decimal{decimal.NewFromInt(2), decimal.NewFromInt(4)},
	)

	assert.True(t, decimal.NewFromFloat(3.5).Equal(avg), "got %s", avg)
}

func TestWeightedAverageUnitCost_EmptyReturnsZero(t *testing.T) {
	assert.True(t, workorder.WeightedAverageUnitCost(nil, nil).IsZero())
	assert.True(t, workorder.WeightedAverageUnitCost([]int{0, 0}, []decimal.Decimal{decimal.NewFromInt(5), decimal.NewFromInt(7)}).IsZero())
}

func TestWeightedAverageUnitCost_Rounds(t *testing.T) {
	// 3 @ 1.00 and 3 @ 2.00 -> 9 / 6 = 1.5; 1 @ 1 and 2 @ 2 -> 5/3 = 1.6667
	avg := workorder.WeightedAverageUnitCost(
		[]int{1, 2},
		[]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2)},
	)

	assert.True(t, decimal.NewFromFloat(1.6667).Equal(avg), "got %s", avg)
}

func TestComponentCost_Extended(t *testing.T) {
	c := workorder.ComponentCost{ItemID: "SKU-1", Quantity: 4, UnitCost: decimal.NewFromFloat(2.25)}

	assert.True(t, decimal.NewFromInt(9).Equal(c.Extended()))
}
