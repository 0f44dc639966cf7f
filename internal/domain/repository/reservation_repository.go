package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReservationRepository puerto de persistencia de reservas.
// GetByID devuelve (nil, nil) cuando la reserva no existe en la organización.
type ReservationRepository interface {
	Create(ctx context.Context, r *entity.Reservation) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.Reservation, error)
	// Release marca la reserva liberada solo si sigue activa; devuelve false si ya estaba liberada o no existe.
	Release(ctx context.Context, organizationID, id, reason string, at time.Time) (bool, error)
	// Extend cambia ExpiresAt solo si la reserva sigue activa; devuelve false en caso contrario.
	Extend(ctx context.Context, organizationID, id string, expiresAt time.Time) (bool, error)
	ListActive(ctx context.Context, organizationID string) ([]*entity.Reservation, error)
	ListByReference(ctx context.Context, organizationID, referenceType, referenceID string) ([]*entity.Reservation, error)
	// SumActive suma las reservas activas del producto (bodega opcional).
	SumActive(ctx context.Context, organizationID, productID string, warehouseID *string) (decimal.Decimal, error)
	// ReleaseExpired libera en bloque las reservas activas con ExpiresAt <= now.
	// organizationID vacío = todas las organizaciones. Devuelve los IDs liberados.
	ReleaseExpired(ctx context.Context, organizationID string, now time.Time) ([]string, error)
}
