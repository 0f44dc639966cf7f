package entity

import "time"

// Product representa un producto del catálogo externo tal como lo consume el motor de inventario.
// El catálogo es dueño del registro; aquí solo se lee la unidad base y si es físico.
type Product struct {
	ID             string
	OrganizationID string
	SKU            string
	Name           string
	BaseUnitCode   string // unidad canónica en la que se almacena y agrega el stock
	IsPhysical     bool   // false para servicios: no admiten movimientos ni reservas
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
