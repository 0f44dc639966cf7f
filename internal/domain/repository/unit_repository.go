package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// UnitRepository puerto de lectura de unidades de medida y conversiones.
// Las búsquedas puntuales devuelven (nil, nil) cuando no hay fila.
type UnitRepository interface {
	GetUnit(ctx context.Context, code string) (*entity.UnitOfMeasure, error)
	GetOverride(ctx context.Context, productID, unitCode string) (*entity.ProductUnitOverride, error)
	GetConversion(ctx context.Context, fromUnit, toUnit string) (*entity.UnitConversion, error)
	// ListPackagingUnits devuelve las unidades marcadas como empaque.
	ListPackagingUnits(ctx context.Context) ([]*entity.UnitOfMeasure, error)
}
