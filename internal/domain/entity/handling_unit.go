package entity

import "time"

// HandlingUnitStatus estado físico de un empaque.
type HandlingUnitStatus string

const (
	HandlingUnitSealed HandlingUnitStatus = "sealed"
	HandlingUnitOpened HandlingUnitStatus = "opened"
)

// HandlingUnit empaque físico discreto (caja, pallet, pack) de una unidad de empaque.
// Los sellados son los que puede abrir el desempaque automático.
type HandlingUnit struct {
	ID             string
	OrganizationID string
	ProductID      string
	WarehouseID    *string
	UnitCode       string
	Status         HandlingUnitStatus
	CreatedAt      time.Time
	OpenedAt       *time.Time
}
