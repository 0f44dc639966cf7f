package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReservationRequest body para POST /api/reservations.
type CreateReservationRequest struct {
	ProductID      string          `json:"product_id" validate:"required"`
	WarehouseID    *string         `json:"warehouse_id,omitempty" validate:"omitempty,min=1"`
	BatchID        *string         `json:"batch_id,omitempty" validate:"omitempty,min=1"`
	HandlingUnitID *string         `json:"handling_unit_id,omitempty" validate:"omitempty,min=1"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCode       string          `json:"unit_code" validate:"required,max=20"`
	ReferenceType  string          `json:"reference_type" validate:"required,max=50"`
	ReferenceID    string          `json:"reference_id" validate:"required,max=100"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"` // nil = permanente
}

// ReleaseReservationRequest body opcional para POST /api/reservations/:id/release.
type ReleaseReservationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=50"`
}

// ExtendReservationRequest body para POST /api/reservations/:id/extend.
type ExtendReservationRequest struct {
	ExpiresAt time.Time `json:"expires_at" validate:"required"`
}

// ReservationResponse salida de una reserva.
type ReservationResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	WarehouseID           *string         `json:"warehouse_id,omitempty"`
	BatchID               *string         `json:"batch_id,omitempty"`
	HandlingUnitID        *string         `json:"handling_unit_id,omitempty"`
	QuantityInBaseUnit    decimal.Decimal `json:"quantity_in_base_unit"`
	UnitCode              string          `json:"unit_code"`
	QuantityInEnteredUnit decimal.Decimal `json:"quantity_in_entered_unit"`
	ReferenceType         string          `json:"reference_type"`
	ReferenceID           string          `json:"reference_id"`
	Active                bool            `json:"active"`
	CreatedAt             time.Time       `json:"created_at"`
	ExpiresAt             *time.Time      `json:"expires_at,omitempty"`
	ReleasedAt            *time.Time      `json:"released_at,omitempty"`
	ReleaseReason         *string         `json:"release_reason,omitempty"`
}

// ReservationListResponse listado de reservas.
type ReservationListResponse struct {
	Items []ReservationResponse `json:"items"`
	Total int                   `json:"total"`
}

// SweepResponse resultado de POST /api/reservations/sweep.
type SweepResponse struct {
	Released    int       `json:"released"`
	ReleasedIDs []string  `json:"released_ids"`
	SweptAt     time.Time `json:"swept_at"`
}
