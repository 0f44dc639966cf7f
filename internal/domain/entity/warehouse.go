package entity

import "time"

// Warehouse bodega de la organización. Dato de referencia: el motor solo valida que exista.
type Warehouse struct {
	ID             string
	OrganizationID string
	Code           string
	Name           string
	CreatedAt      time.Time
}
