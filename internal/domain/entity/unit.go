package entity

import "github.com/shopspring/decimal"

// UnitOfMeasure dato de referencia de unidades (EACH, PACK, CASE, KG, L...).
// IsPackaging marca las unidades que representan un contenedor físico.
type UnitOfMeasure struct {
	Code        string
	Name        string
	IsPackaging bool
}

// ProductUnitOverride define cuántas unidades base contiene una unidad para un producto concreto.
// Tiene prioridad sobre la tabla global. Único por (producto, unidad).
type ProductUnitOverride struct {
	ProductID          string
	UnitCode           string
	QuantityInBaseUnit decimal.Decimal
}

// UnitConversion factor global y direccional: cantidad(To) = cantidad(From) * Factor.
type UnitConversion struct {
	FromUnit string
	ToUnit   string
	Factor   decimal.Decimal
}
