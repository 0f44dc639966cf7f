package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

// UnitRepo unidades de medida, overrides por producto y conversiones globales.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

// GetUnit obtiene una unidad por código.
func (r *UnitRepo) GetUnit(ctx context.Context, code string) (*entity.UnitOfMeasure, error) {
	var u entity.UnitOfMeasure
	err := r.q.QueryRow(ctx, `SELECT code, name, is_packaging FROM units_of_measure WHERE code = $1`, code).
		Scan(&u.Code, &u.Name, &u.IsPackaging)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// GetOverride obtiene el override (producto, unidad) si existe.
func (r *UnitRepo) GetOverride(ctx context.Context, productID, unitCode string) (*entity.ProductUnitOverride, error) {
	var o entity.ProductUnitOverride
	err := r.q.QueryRow(ctx, `
		SELECT product_id, unit_code, quantity_in_base_unit
		FROM product_unit_overrides WHERE product_id = $1 AND unit_code = $2`, productID, unitCode).
		Scan(&o.ProductID, &o.UnitCode, &o.QuantityInBaseUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit override: %w", err)
	}
	return &o, nil
}

// GetConversion obtiene la conversión global en la dirección exacta pedida.
func (r *UnitRepo) GetConversion(ctx context.Context, fromUnit, toUnit string) (*entity.UnitConversion, error) {
	var c entity.UnitConversion
	err := r.q.QueryRow(ctx, `
		SELECT from_unit, to_unit, factor
		FROM unit_conversions WHERE from_unit = $1 AND to_unit = $2`, fromUnit, toUnit).
		Scan(&c.FromUnit, &c.ToUnit, &c.Factor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit conversion: %w", err)
	}
	return &c, nil
}

// ListPackagingUnits unidades marcadas como empaque, por código.
func (r *UnitRepo) ListPackagingUnits(ctx context.Context) ([]*entity.UnitOfMeasure, error) {
	rows, err := r.q.Query(ctx, `SELECT code, name, is_packaging FROM units_of_measure WHERE is_packaging ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list packaging units: %w", err)
	}
	defer rows.Close()
	var list []*entity.UnitOfMeasure
	for rows.Next() {
		var u entity.UnitOfMeasure
		if err := rows.Scan(&u.Code, &u.Name, &u.IsPackaging); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
