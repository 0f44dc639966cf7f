package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveRequest body para POST /api/inventory/receipts.
type ReceiveRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	WarehouseID *string          `json:"warehouse_id,omitempty" validate:"omitempty,min=1"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitCode    string           `json:"unit_code" validate:"required,max=20"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"` // costo por unidad ingresada
	Currency    *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// ReceivePackagesRequest body para POST /api/inventory/packages.
type ReceivePackagesRequest struct {
	ProductID   string           `json:"product_id" validate:"required"`
	WarehouseID *string          `json:"warehouse_id,omitempty" validate:"omitempty,min=1"`
	Count       int64            `json:"count" validate:"required,min=1,max=10000"`
	UnitCode    string           `json:"unit_code" validate:"required,max=20"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"` // costo por empaque
	Currency    *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// SellLineRequest línea de venta.
type SellLineRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	UnitCode string          `json:"unit_code" validate:"required,max=20"`
}

// SellRequest body para POST /api/inventory/sales.
type SellRequest struct {
	ProductID   string            `json:"product_id" validate:"required"`
	WarehouseID *string           `json:"warehouse_id,omitempty" validate:"omitempty,min=1"`
	Lines       []SellLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// AdjustRequest body para POST /api/inventory/adjustments.
type AdjustRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCode    string          `json:"unit_code" validate:"required,max=20"`
	Direction   string          `json:"direction" validate:"required,oneof=pos neg"`
	Reason      string          `json:"reason" validate:"required,max=500"`
}

// MovementResponse salida común de recepciones y ajustes.
type MovementResponse struct {
	TransactionID      string          `json:"transaction_id"`
	QuantityInBaseUnit decimal.Decimal `json:"quantity_in_base_unit"`
	UnitCode           string          `json:"unit_code"`
}

// ReceivePackagesResponse salida de una recepción de empaques.
type ReceivePackagesResponse struct {
	MovementResponse
	HandlingUnitIDs []string `json:"handling_unit_ids"`
}

// SellResponse salida de una venta.
type SellResponse struct {
	TransactionID     string          `json:"transaction_id"`
	TotalRequested    decimal.Decimal `json:"total_requested"`
	PackagesOpened    int64           `json:"packages_opened"`
	PackagingUnit     string          `json:"packaging_unit,omitempty"`
	TotalQtyRemaining decimal.Decimal `json:"total_qty_remaining"`
	UnitCode          string          `json:"unit_code"`
}

// StockResponse stock derivado del libro.
type StockResponse struct {
	ProductID       string          `json:"product_id"`
	WarehouseID     *string         `json:"warehouse_id,omitempty"`
	UnitCode        string          `json:"unit_code"`
	TotalQty        decimal.Decimal `json:"total_qty"` // stock suelto
	Packaged        decimal.Decimal `json:"packaged"`
	Reserved        decimal.Decimal `json:"reserved"`
	Available       decimal.Decimal `json:"available"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}

// LedgerEntryResponse entrada del libro para auditoría.
type LedgerEntryResponse struct {
	ID                    string           `json:"id"`
	TransactionID         string           `json:"transaction_id"`
	ProductID             string           `json:"product_id"`
	WarehouseID           *string          `json:"warehouse_id,omitempty"`
	OccurredAt            time.Time        `json:"occurred_at"`
	MovementType          string           `json:"movement_type"`
	StockForm             string           `json:"stock_form"`
	QuantityInBaseUnit    decimal.Decimal  `json:"quantity_in_base_unit"`
	UnitCode              string           `json:"unit_code"`
	QuantityInEnteredUnit decimal.Decimal  `json:"quantity_in_entered_unit"`
	UnitCost              *decimal.Decimal `json:"unit_cost,omitempty"`
	Currency              *string          `json:"currency,omitempty"`
	Reason                string           `json:"reason,omitempty"`
	CreatedBy             string           `json:"created_by,omitempty"`
}

// MovementListResponse listado paginado de entradas del libro.
type MovementListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ConversionResponse resultado de GET /api/inventory/conversions/:productId.
type ConversionResponse struct {
	ProductID string          `json:"product_id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Factor    decimal.Decimal `json:"factor"`
	Quantity  decimal.Decimal `json:"quantity"`
	Result    decimal.Decimal `json:"result"`
}
