package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Motivos de liberación conocidos.
const (
	ReleaseReasonExpired   = "expired"
	ReleaseReasonCancelled = "cancelled"
	ReleaseReasonFulfilled = "fulfilled"
)

// Reservation retención blanda contra consumo futuro de stock; no se refleja en el libro.
// Solo muta por liberación (ReleasedAt/ReleaseReason) o extensión (ExpiresAt). Nunca se borra.
type Reservation struct {
	ID                    string
	OrganizationID        string
	ProductID             string
	WarehouseID           *string
	BatchID               *string
	HandlingUnitID        *string
	QuantityInBaseUnit    decimal.Decimal
	UnitCode              string
	QuantityInEnteredUnit decimal.Decimal
	ReferenceType         string
	ReferenceID           string
	CreatedAt             time.Time
	ExpiresAt             *time.Time // nil = retención permanente
	ReleasedAt            *time.Time
	ReleaseReason         *string
}

// Active indica si la reserva no ha sido liberada.
func (r *Reservation) Active() bool {
	return r.ReleasedAt == nil
}

// ExpiredAt indica si la reserva activa venció en el instante dado.
func (r *Reservation) ExpiredAt(now time.Time) bool {
	return r.Active() && r.ExpiresAt != nil && !r.ExpiresAt.After(now)
}
