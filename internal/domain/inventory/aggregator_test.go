package inventory

import (
	"testing"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFold_ConvencionDeSigno(t *testing.T) {
	sums := map[entity.MovementType]decimal.Decimal{
		entity.MovementReceipt:        dec("100"),
		entity.MovementAdjustmentPos:  dec("5"),
		entity.MovementDisassemblyIn:  dec("12"),
		entity.MovementIssue:          dec("40"),
		entity.MovementAdjustmentNeg:  dec("2"),
		entity.MovementDisassemblyOut: dec("12"),
	}
	assert.True(t, Fold(sums).Equal(dec("63")))
	assert.True(t, Fold(nil).IsZero())
}

func TestPackagesNeeded_DivisionTecho(t *testing.T) {
	cases := []struct {
		deficit, size string
		want          int64
	}{
		{"1", "6", 1},
		{"6", "6", 1},
		{"7", "6", 2},
		{"12", "6", 2},
		{"0.5", "0.25", 2},
		{"0.51", "0.25", 3},
		{"0", "6", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PackagesNeeded(dec(c.deficit), dec(c.size)), "%s/%s", c.deficit, c.size)
	}
}

func TestAverageUnitCost(t *testing.T) {
	assert.True(t, AverageUnitCost(repository.CostTotals{}).IsZero())
	// 10 a 100 + 5 a 120 = 1600 / 15
	got := AverageUnitCost(repository.CostTotals{Quantity: dec("15"), Value: dec("1600")})
	assert.True(t, got.Equal(dec("106.666667")), got.String())
}

func TestMovementType_Valid(t *testing.T) {
	assert.True(t, entity.MovementDisassemblyOut.Valid())
	assert.False(t, entity.MovementType("transfer").Valid())
	assert.Equal(t, 0, entity.MovementType("transfer").Sign())
}
