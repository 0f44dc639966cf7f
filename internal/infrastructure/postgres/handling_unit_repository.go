package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.HandlingUnitRepository = (*HandlingUnitRepo)(nil)

// HandlingUnitRepo empaques físicos sobre PostgreSQL.
type HandlingUnitRepo struct {
	q Querier
}

// NewHandlingUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewHandlingUnitRepository(q Querier) *HandlingUnitRepo {
	return &HandlingUnitRepo{q: q}
}

// CreateMany inserta los empaques en un batch.
func (r *HandlingUnitRepo) CreateMany(ctx context.Context, units []*entity.HandlingUnit) error {
	if len(units) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, hu := range units {
		b.Queue(`
			INSERT INTO handling_units (id, organization_id, product_id, warehouse_id, unit_code, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			hu.ID, hu.OrganizationID, hu.ProductID, hu.WarehouseID, hu.UnitCode, string(hu.Status), hu.CreatedAt,
		)
	}
	br := r.q.SendBatch(ctx, b)
	for range units {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("create handling units: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("create handling units: %w", err)
	}
	return nil
}

func sealedWhere(scope repository.HandlingUnitScope) *whereClause {
	w := &whereClause{}
	w.add("organization_id = $%d", scope.OrganizationID)
	w.add("product_id = $%d", scope.ProductID)
	w.add("unit_code = $%d", scope.UnitCode)
	w.addWarehouse(scope.WarehouseID, scope.ExactWarehouse)
	w.add("status = $%d", string(entity.HandlingUnitSealed))
	return w
}

// CountSealed cuenta empaques sellados en el alcance.
func (r *HandlingUnitRepo) CountSealed(ctx context.Context, scope repository.HandlingUnitScope) (int64, error) {
	w := sealedWhere(scope)
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM handling_units`+w.String(), w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sealed handling units: %w", err)
	}
	return n, nil
}

// LockSealed bloquea hasta limit empaques sellados, más antiguos primero.
func (r *HandlingUnitRepo) LockSealed(ctx context.Context, scope repository.HandlingUnitScope, limit int64) ([]*entity.HandlingUnit, error) {
	w := sealedWhere(scope)
	query := `SELECT id, organization_id, product_id, warehouse_id, unit_code, status, created_at, opened_at
		FROM handling_units` + w.String()
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT %s FOR UPDATE SKIP LOCKED", w.next(limit))

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("lock sealed handling units: %w", err)
	}
	defer rows.Close()
	var list []*entity.HandlingUnit
	for rows.Next() {
		var (
			hu     entity.HandlingUnit
			status string
		)
		if err := rows.Scan(&hu.ID, &hu.OrganizationID, &hu.ProductID, &hu.WarehouseID, &hu.UnitCode,
			&status, &hu.CreatedAt, &hu.OpenedAt); err != nil {
			return nil, fmt.Errorf("scan handling unit: %w", err)
		}
		hu.Status = entity.HandlingUnitStatus(status)
		list = append(list, &hu)
	}
	return list, rows.Err()
}

// MarkOpened pasa los empaques a abiertos. Falla si alguno ya no estaba sellado.
func (r *HandlingUnitRepo) MarkOpened(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE handling_units SET status = $1, opened_at = $2
		WHERE id = ANY($3) AND status = $4`,
		string(entity.HandlingUnitOpened), at, ids, string(entity.HandlingUnitSealed))
	if err != nil {
		return fmt.Errorf("open handling units: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("%w: %d de %d empaques ya no estaban sellados",
			domain.ErrInsufficientPackages, int64(len(ids))-tag.RowsAffected(), len(ids))
	}
	return nil
}
