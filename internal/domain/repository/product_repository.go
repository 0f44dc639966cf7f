package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (DIP). Devuelve (nil, nil) si no existe en la organización.
type ProductRepository interface {
	GetByID(ctx context.Context, organizationID, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) hasta el fin de la transacción.
	// Serializa las operaciones de stock de un mismo producto.
	GetForUpdate(ctx context.Context, organizationID, id string) (*entity.Product, error)
}
