package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo cerrado de movimiento; el signo lo decide la agregación, no la columna.
type MovementType string

// Tipos de movimiento del libro de inventario.
const (
	MovementReceipt        MovementType = "receipt"
	MovementIssue          MovementType = "issue"
	MovementAdjustmentPos  MovementType = "adjustment_pos"
	MovementAdjustmentNeg  MovementType = "adjustment_neg"
	MovementDisassemblyIn  MovementType = "disassembly_in"
	MovementDisassemblyOut MovementType = "disassembly_out"
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	switch t {
	case MovementReceipt, MovementIssue, MovementAdjustmentPos, MovementAdjustmentNeg,
		MovementDisassemblyIn, MovementDisassemblyOut:
		return true
	}
	return false
}

// Sign devuelve +1 para entradas y -1 para salidas.
func (t MovementType) Sign() int {
	switch t {
	case MovementReceipt, MovementAdjustmentPos, MovementDisassemblyIn:
		return 1
	case MovementIssue, MovementAdjustmentNeg, MovementDisassemblyOut:
		return -1
	}
	return 0
}

// StockForm separa el stock suelto (disponible para vender) del stock empacado en unidades de manejo.
type StockForm string

const (
	StockFormLoose    StockForm = "loose"
	StockFormPackaged StockForm = "packaged"
)

// LedgerEntry hecho inmutable de un movimiento de stock. Nunca se actualiza ni se borra;
// las correcciones son entradas nuevas.
type LedgerEntry struct {
	ID                    string
	TransactionID         string // agrupa las entradas escritas por una misma operación
	OrganizationID        string
	ProductID             string
	WarehouseID           *string
	OccurredAt            time.Time
	MovementType          MovementType
	StockForm             StockForm
	QuantityInBaseUnit    decimal.Decimal // siempre > 0
	UnitCode              string
	QuantityInEnteredUnit decimal.Decimal
	UnitCost              *decimal.Decimal
	Currency              *string
	Reason                string
	CreatedBy             string
}
