package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de inventario sobre PostgreSQL. Solo INSERT y SELECT: la tabla rechaza UPDATE/DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const insertLedgerEntry = `
	INSERT INTO inventory_ledger (
		id, transaction_id, organization_id, product_id, warehouse_id, occurred_at,
		movement_type, stock_form, quantity_in_base_unit, unit_code, quantity_in_entered_unit,
		unit_cost, currency, reason, created_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// Append inserta las entradas en un solo batch dentro de la transacción del llamador.
func (r *LedgerRepo) Append(ctx context.Context, entries ...*entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, e := range entries {
		if !e.MovementType.Valid() {
			return fmt.Errorf("append ledger: tipo de movimiento inválido %q", e.MovementType)
		}
		b.Queue(insertLedgerEntry,
			e.ID, e.TransactionID, e.OrganizationID, e.ProductID, e.WarehouseID, e.OccurredAt,
			string(e.MovementType), string(e.StockForm), e.QuantityInBaseUnit, e.UnitCode, e.QuantityInEnteredUnit,
			e.UnitCost, e.Currency, nullIfEmpty(e.Reason), nullIfEmpty(e.CreatedBy),
		)
	}
	br := r.q.SendBatch(ctx, b)
	for range entries {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("append ledger: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("append ledger: %w", err)
	}
	return nil
}

func scopeWhere(scope repository.LedgerScope) *whereClause {
	w := &whereClause{}
	w.add("organization_id = $%d", scope.OrganizationID)
	w.add("product_id = $%d", scope.ProductID)
	w.addWarehouse(scope.WarehouseID, scope.ExactWarehouse)
	if scope.StockForm != "" {
		w.add("stock_form = $%d", string(scope.StockForm))
	}
	return w
}

// SumByType suma cantidades en unidad base por tipo de movimiento.
func (r *LedgerRepo) SumByType(ctx context.Context, scope repository.LedgerScope) (map[entity.MovementType]decimal.Decimal, error) {
	w := scopeWhere(scope)
	query := `SELECT movement_type, COALESCE(SUM(quantity_in_base_unit), 0) FROM inventory_ledger` +
		w.String() + ` GROUP BY movement_type`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	defer rows.Close()
	sums := make(map[entity.MovementType]decimal.Decimal)
	for rows.Next() {
		var (
			mt  string
			qty decimal.Decimal
		)
		if err := rows.Scan(&mt, &qty); err != nil {
			return nil, fmt.Errorf("scan ledger sum: %w", err)
		}
		sums[entity.MovementType(mt)] = qty
	}
	return sums, rows.Err()
}

// ReceiptCostTotals acumulados de recepciones con costo para el promedio ponderado.
func (r *LedgerRepo) ReceiptCostTotals(ctx context.Context, scope repository.LedgerScope) (repository.CostTotals, error) {
	w := scopeWhere(scope)
	w.add("movement_type = $%d", string(entity.MovementReceipt))
	w.addLiteral("unit_cost IS NOT NULL")
	query := `SELECT COALESCE(SUM(quantity_in_base_unit), 0), COALESCE(SUM(quantity_in_base_unit * unit_cost), 0)
		FROM inventory_ledger` + w.String()
	var t repository.CostTotals
	if err := r.q.QueryRow(ctx, query, w.args...).Scan(&t.Quantity, &t.Value); err != nil {
		return repository.CostTotals{}, fmt.Errorf("receipt cost totals: %w", err)
	}
	return t, nil
}

// List lista entradas del producto, más recientes primero.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	w := scopeWhere(repository.LedgerScope{
		OrganizationID: f.OrganizationID,
		ProductID:      f.ProductID,
		WarehouseID:    f.WarehouseID,
	})
	if f.From != nil {
		w.add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("occurred_at <= $%d", *f.To)
	}
	query := `
		SELECT id, transaction_id, organization_id, product_id, warehouse_id, occurred_at,
			movement_type, stock_form, quantity_in_base_unit, unit_code, quantity_in_entered_unit,
			unit_cost, currency, reason, created_by
		FROM inventory_ledger` + w.String()
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, seq DESC LIMIT %s OFFSET %s", w.next(f.Limit), w.next(f.Offset))

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var (
			e               entity.LedgerEntry
			mt, form        string
			reason, creator *string
		)
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.OrganizationID, &e.ProductID, &e.WarehouseID, &e.OccurredAt,
			&mt, &form, &e.QuantityInBaseUnit, &e.UnitCode, &e.QuantityInEnteredUnit,
			&e.UnitCost, &e.Currency, &reason, &creator); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.MovementType = entity.MovementType(mt)
		e.StockForm = entity.StockForm(form)
		e.Reason = derefString(reason)
		e.CreatedBy = derefString(creator)
		list = append(list, &e)
	}
	return list, rows.Err()
}
