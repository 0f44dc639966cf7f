package entity

import "github.com/shopspring/decimal"

// StockSnapshot stock derivado del libro para un alcance (producto y bodega opcional).
// Se recalcula en cada consulta; nunca se persiste como fuente de verdad.
type StockSnapshot struct {
	OrganizationID  string
	ProductID       string
	WarehouseID     *string
	UnitCode        string          // unidad base del producto
	OnHand          decimal.Decimal // stock suelto
	Packaged        decimal.Decimal // stock dentro de unidades de manejo selladas
	Reserved        decimal.Decimal // reservas activas
	Available       decimal.Decimal // OnHand - Reserved
	AverageUnitCost decimal.Decimal // promedio ponderado de las recepciones con costo
}
