package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo reservas sobre PostgreSQL. Las filas nunca se borran.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

const reservationColumns = `id, organization_id, product_id, warehouse_id, batch_id, handling_unit_id,
	quantity_in_base_unit, unit_code, quantity_in_entered_unit, reference_type, reference_id,
	created_at, expires_at, released_at, release_reason`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var res entity.Reservation
	err := row.Scan(&res.ID, &res.OrganizationID, &res.ProductID, &res.WarehouseID, &res.BatchID, &res.HandlingUnitID,
		&res.QuantityInBaseUnit, &res.UnitCode, &res.QuantityInEnteredUnit, &res.ReferenceType, &res.ReferenceID,
		&res.CreatedAt, &res.ExpiresAt, &res.ReleasedAt, &res.ReleaseReason)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create persiste una reserva activa.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		res.ID, res.OrganizationID, res.ProductID, res.WarehouseID, res.BatchID, res.HandlingUnitID,
		res.QuantityInBaseUnit, res.UnitCode, res.QuantityInEnteredUnit, res.ReferenceType, res.ReferenceID,
		res.CreatedAt, res.ExpiresAt, res.ReleasedAt, res.ReleaseReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reserva %s ya existe", domain.ErrInvalidInput, res.ID)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetByID obtiene una reserva de la organización.
func (r *ReservationRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Reservation, error) {
	row := r.q.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE organization_id = $1 AND id = $2`, organizationID, id)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

// Release marca liberada la reserva solo si sigue activa.
func (r *ReservationRepo) Release(ctx context.Context, organizationID, id, reason string, at time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE reservations SET released_at = $1, release_reason = $2
		WHERE organization_id = $3 AND id = $4 AND released_at IS NULL`,
		at, reason, organizationID, id)
	if err != nil {
		return false, fmt.Errorf("release reservation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Extend cambia el vencimiento solo si la reserva sigue activa.
func (r *ReservationRepo) Extend(ctx context.Context, organizationID, id string, expiresAt time.Time) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE reservations SET expires_at = $1
		WHERE organization_id = $2 AND id = $3 AND released_at IS NULL`,
		expiresAt, organizationID, id)
	if err != nil {
		return false, fmt.Errorf("extend reservation: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Reservation, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// ListActive reservas no liberadas de la organización.
func (r *ReservationRepo) ListActive(ctx context.Context, organizationID string) ([]*entity.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE organization_id = $1 AND released_at IS NULL ORDER BY created_at, id`, organizationID)
}

// ListByReference reservas de un documento externo, activas o liberadas.
func (r *ReservationRepo) ListByReference(ctx context.Context, organizationID, referenceType, referenceID string) ([]*entity.Reservation, error) {
	return r.list(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE organization_id = $1 AND reference_type = $2 AND reference_id = $3 ORDER BY created_at, id`,
		organizationID, referenceType, referenceID)
}

// SumActive suma las reservas activas del producto.
func (r *ReservationRepo) SumActive(ctx context.Context, organizationID, productID string, warehouseID *string) (decimal.Decimal, error) {
	w := &whereClause{}
	w.add("organization_id = $%d", organizationID)
	w.add("product_id = $%d", productID)
	if warehouseID != nil {
		w.add("warehouse_id = $%d", *warehouseID)
	}
	w.conds = append(w.conds, "released_at IS NULL")
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity_in_base_unit), 0) FROM reservations`+w.String(), w.args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum active reservations: %w", err)
	}
	return total, nil
}

// ReleaseExpired libera en un solo UPDATE las reservas vencidas. El predicado excluye las ya
// liberadas, por lo que ejecuciones concurrentes no procesan dos veces la misma fila.
func (r *ReservationRepo) ReleaseExpired(ctx context.Context, organizationID string, now time.Time) ([]string, error) {
	w := &whereClause{}
	ts := w.next(now)
	w.conds = append(w.conds, "released_at IS NULL", "expires_at IS NOT NULL", "expires_at <= "+ts)
	if organizationID != "" {
		w.add("organization_id = $%d", organizationID)
	}
	query := fmt.Sprintf(`UPDATE reservations SET released_at = %s, release_reason = '%s'%s RETURNING id`,
		ts, entity.ReleaseReasonExpired, w.String())

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("release expired reservations: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan released id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
