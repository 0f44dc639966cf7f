package inventory

import (
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Fold aplica la convención de signo a las sumas por tipo:
// (receipt + adjustment_pos + disassembly_in) - (issue + adjustment_neg + disassembly_out).
func Fold(sums map[entity.MovementType]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for t, q := range sums {
		switch t.Sign() {
		case 1:
			total = total.Add(q)
		case -1:
			total = total.Sub(q)
		}
	}
	return total
}

// AverageUnitCost costo promedio ponderado de las recepciones:
// Σ(cantidad * costo) / Σ cantidad. Cero si no hay recepciones con costo.
func AverageUnitCost(t repository.CostTotals) decimal.Decimal {
	if !t.Quantity.IsPositive() {
		return decimal.Zero
	}
	return t.Value.Div(t.Quantity).Round(6)
}

// PackagesNeeded mínimo de empaques a abrir para cubrir el déficit: ceil(deficit / contenido).
func PackagesNeeded(deficit, packageBaseQuantity decimal.Decimal) int64 {
	if !deficit.IsPositive() || !packageBaseQuantity.IsPositive() {
		return 0
	}
	q, r := deficit.QuoRem(packageBaseQuantity, 0)
	n := q.IntPart()
	if !r.IsZero() {
		n++
	}
	return n
}
