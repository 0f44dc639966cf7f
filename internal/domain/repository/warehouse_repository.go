package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// WarehouseRepository puerto de lectura de bodegas. Devuelve (nil, nil) si no existe en la organización.
type WarehouseRepository interface {
	GetByID(ctx context.Context, organizationID, id string) (*entity.Warehouse, error)
}
