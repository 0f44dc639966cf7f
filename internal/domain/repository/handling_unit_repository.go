package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// HandlingUnitScope alcance de búsqueda de empaques sellados.
type HandlingUnitScope struct {
	OrganizationID string
	ProductID      string
	WarehouseID    *string
	ExactWarehouse bool // ver LedgerScope.ExactWarehouse
	UnitCode       string
}

// HandlingUnitRepository puerto de empaques físicos.
type HandlingUnitRepository interface {
	CreateMany(ctx context.Context, units []*entity.HandlingUnit) error
	CountSealed(ctx context.Context, scope HandlingUnitScope) (int64, error)
	// LockSealed bloquea hasta limit empaques sellados (más antiguos primero, SKIP LOCKED).
	LockSealed(ctx context.Context, scope HandlingUnitScope, limit int64) ([]*entity.HandlingUnit, error)
	MarkOpened(ctx context.Context, ids []string, at time.Time) error
}
