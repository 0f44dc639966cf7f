package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo de productos sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, organization_id, sku, name, base_unit_code, is_physical, created_at, updated_at`

// GetByID obtiene un producto de la organización.
func (r *ProductRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE organization_id = $1 AND id = $2`
	return r.get(ctx, query, organizationID, id)
}

// GetForUpdate obtiene el producto bloqueando su fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, organizationID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE organization_id = $1 AND id = $2 FOR UPDATE`
	return r.get(ctx, query, organizationID, id)
}

func (r *ProductRepo) get(ctx context.Context, query, organizationID, id string) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, organizationID, id).Scan(
		&p.ID, &p.OrganizationID, &p.SKU, &p.Name, &p.BaseUnitCode, &p.IsPhysical, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
