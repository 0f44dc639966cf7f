package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ReservationUseCase administra las retenciones blandas de stock.
// No verifica disponibilidad: eso lo decide el llamador con CurrentStock.
type ReservationUseCase struct {
	txRunner TxRunner
	now      clock
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner TxRunner) *ReservationUseCase {
	return &ReservationUseCase{txRunner: txRunner, now: systemClock}
}

// CreateReservationInput entrada para crear una reserva.
type CreateReservationInput struct {
	OrganizationID string
	ProductID      string
	WarehouseID    *string
	BatchID        *string
	HandlingUnitID *string
	Quantity       decimal.Decimal
	UnitCode       string
	ReferenceType  string
	ReferenceID    string
	ExpiresAt      *time.Time // nil = permanente
}

// Create registra una reserva activa con la cantidad convertida a unidad base.
func (uc *ReservationUseCase) Create(ctx context.Context, in CreateReservationInput) (*entity.Reservation, error) {
	if err := validateQuantity(in.Quantity, in.UnitCode); err != nil {
		return nil, err
	}
	if in.ReferenceType == "" || in.ReferenceID == "" {
		return nil, domain.InvalidInputf("reference_type y reference_id son obligatorios")
	}
	now := uc.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, domain.InvalidInputf("expires_at debe ser posterior a la hora actual")
	}

	var out *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		if in.OrganizationID == "" || in.ProductID == "" {
			return domain.InvalidInputf("organization_id y product_id son obligatorios")
		}
		product, err := repos.Products.GetByID(ctx, in.OrganizationID, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: %s", domain.ErrProductNotFound, in.ProductID)
		}
		if !product.IsPhysical {
			return fmt.Errorf("%w: %s", domain.ErrProductNotPhysical, in.ProductID)
		}
		if err := checkWarehouse(ctx, repos, in.OrganizationID, in.WarehouseID); err != nil {
			return err
		}
		qtyBase, err := invdomain.NewResolver(repos.Units).ToBase(ctx, product, in.Quantity, in.UnitCode)
		if err != nil {
			return err
		}
		if !qtyBase.IsPositive() {
			return domain.InvalidInputf("cantidad convertida no positiva")
		}

		r := &entity.Reservation{
			ID:                    uuid.New().String(),
			OrganizationID:        in.OrganizationID,
			ProductID:             product.ID,
			WarehouseID:           in.WarehouseID,
			BatchID:               in.BatchID,
			HandlingUnitID:        in.HandlingUnitID,
			QuantityInBaseUnit:    qtyBase,
			UnitCode:              in.UnitCode,
			QuantityInEnteredUnit: in.Quantity,
			ReferenceType:         in.ReferenceType,
			ReferenceID:           in.ReferenceID,
			CreatedAt:             now,
			ExpiresAt:             in.ExpiresAt,
		}
		if err := repos.Reservations.Create(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Release libera la reserva. Liberar una reserva ya liberada no cambia nada y devuelve el registro guardado.
func (uc *ReservationUseCase) Release(ctx context.Context, organizationID, id, reason string) (*entity.Reservation, error) {
	if reason == "" {
		reason = entity.ReleaseReasonCancelled
	}
	var out *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		r, err := getReservation(ctx, repos, organizationID, id)
		if err != nil {
			return err
		}
		if r.Active() {
			if _, err := repos.Reservations.Release(ctx, organizationID, id, reason, uc.now()); err != nil {
				return err
			}
			// Releer: si otro proceso la liberó primero se conserva su marca.
			if r, err = getReservation(ctx, repos, organizationID, id); err != nil {
				return err
			}
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Extend mueve el vencimiento de una reserva activa.
func (uc *ReservationUseCase) Extend(ctx context.Context, organizationID, id string, expiresAt time.Time) (*entity.Reservation, error) {
	if !expiresAt.After(uc.now()) {
		return nil, domain.InvalidInputf("el nuevo vencimiento debe ser posterior a la hora actual")
	}
	var out *entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		r, err := getReservation(ctx, repos, organizationID, id)
		if err != nil {
			return err
		}
		if !r.Active() {
			return fmt.Errorf("%w: la reserva %s ya fue liberada", domain.ErrInvalidState, id)
		}
		ok, err := repos.Reservations.Extend(ctx, organizationID, id, expiresAt)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la reserva %s ya fue liberada", domain.ErrInvalidState, id)
		}
		r.ExpiresAt = &expiresAt
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListActive reservas activas de la organización.
func (uc *ReservationUseCase) ListActive(ctx context.Context, organizationID string) ([]*entity.Reservation, error) {
	if organizationID == "" {
		return nil, domain.InvalidInputf("organization_id es obligatorio")
	}
	var out []*entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repos.Reservations.ListActive(ctx, organizationID)
		return err
	})
	return out, err
}

// ListByReference reservas (activas o no) de un documento externo.
func (uc *ReservationUseCase) ListByReference(ctx context.Context, organizationID, referenceType, referenceID string) ([]*entity.Reservation, error) {
	if organizationID == "" || referenceType == "" || referenceID == "" {
		return nil, domain.InvalidInputf("organization_id, type e id son obligatorios")
	}
	var out []*entity.Reservation
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		var err error
		out, err = repos.Reservations.ListByReference(ctx, organizationID, referenceType, referenceID)
		return err
	})
	return out, err
}

func getReservation(ctx context.Context, repos Repos, organizationID, id string) (*entity.Reservation, error) {
	if organizationID == "" || id == "" {
		return nil, domain.InvalidInputf("organization_id e id son obligatorios")
	}
	r, err := repos.Reservations.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrReservationNotFound, id)
	}
	return r, nil
}
