package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Products      repository.ProductRepository
	Warehouses    repository.WarehouseRepository
	Units         repository.UnitRepository
	Ledger        repository.LedgerRepository
	HandlingUnits repository.HandlingUnitRepository
	Reservations  repository.ReservationRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}

// clock permite fijar la hora en tests.
type clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
