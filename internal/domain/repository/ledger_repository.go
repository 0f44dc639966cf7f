package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerScope alcance de agregación: producto, bodega opcional y forma de stock (vacía = todas).
type LedgerScope struct {
	OrganizationID string
	ProductID      string
	WarehouseID    *string // nil = todas las bodegas, salvo con ExactWarehouse
	// ExactWarehouse con WarehouseID nil restringe a las entradas sin bodega.
	// Lo usan las operaciones que escriben en el mismo alcance que leen.
	ExactWarehouse bool
	StockForm      entity.StockForm
}

// LedgerFilter filtros del listado de movimientos.
type LedgerFilter struct {
	OrganizationID string
	ProductID      string
	WarehouseID    *string
	From, To       *time.Time
	Limit, Offset  int
}

// CostTotals acumulados de recepciones con costo para el costo promedio ponderado.
type CostTotals struct {
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// LedgerRepository puerto del libro de inventario: solo inserciones y lecturas.
type LedgerRepository interface {
	// Append inserta las entradas dentro de la transacción del llamador.
	Append(ctx context.Context, entries ...*entity.LedgerEntry) error
	// SumByType suma QuantityInBaseUnit por tipo de movimiento en el alcance dado.
	SumByType(ctx context.Context, scope LedgerScope) (map[entity.MovementType]decimal.Decimal, error)
	// ReceiptCostTotals suma cantidad y valor (cantidad*costo) de las recepciones con costo.
	ReceiptCostTotals(ctx context.Context, scope LedgerScope) (CostTotals, error)
	List(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerEntry, error)
}
