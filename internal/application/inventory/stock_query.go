package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	defaultMovementsLimit = 50
	maxMovementsLimit     = 500
)

// StockQueryUseCase consultas de solo lectura sobre el libro y las conversiones.
type StockQueryUseCase struct {
	repos Repos
}

// NewStockQueryUseCase construye el caso de uso con repositorios sobre el pool.
func NewStockQueryUseCase(repos Repos) *StockQueryUseCase {
	return &StockQueryUseCase{repos: repos}
}

func (uc *StockQueryUseCase) product(ctx context.Context, organizationID, productID string) (*entity.Product, error) {
	if organizationID == "" || productID == "" {
		return nil, domain.InvalidInputf("organization_id y product_id son obligatorios")
	}
	p, err := uc.repos.Products.GetByID(ctx, organizationID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	return p, nil
}

// CurrentStock recalcula el stock del producto a partir del libro (bodega opcional).
func (uc *StockQueryUseCase) CurrentStock(ctx context.Context, organizationID, productID string, warehouseID *string) (*entity.StockSnapshot, error) {
	p, err := uc.product(ctx, organizationID, productID)
	if err != nil {
		return nil, err
	}
	scope := repository.LedgerScope{
		OrganizationID: organizationID,
		ProductID:      p.ID,
		WarehouseID:    warehouseID,
		StockForm:      entity.StockFormLoose,
	}
	onHand, err := currentStock(ctx, uc.repos.Ledger, scope)
	if err != nil {
		return nil, err
	}
	scope.StockForm = entity.StockFormPackaged
	packaged, err := currentStock(ctx, uc.repos.Ledger, scope)
	if err != nil {
		return nil, err
	}
	// El costo promedio considera ambas formas: todas las recepciones con costo.
	scope.StockForm = ""
	costs, err := uc.repos.Ledger.ReceiptCostTotals(ctx, scope)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.repos.Reservations.SumActive(ctx, organizationID, p.ID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &entity.StockSnapshot{
		OrganizationID:  organizationID,
		ProductID:       p.ID,
		WarehouseID:     warehouseID,
		UnitCode:        p.BaseUnitCode,
		OnHand:          onHand,
		Packaged:        packaged,
		Reserved:        reserved,
		Available:       onHand.Sub(reserved),
		AverageUnitCost: invdomain.AverageUnitCost(costs),
	}, nil
}

// ListMovements lista las entradas del libro para auditoría, más recientes primero.
func (uc *StockQueryUseCase) ListMovements(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error) {
	if _, err := uc.product(ctx, filter.OrganizationID, filter.ProductID); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.InvalidInputf("rango de fechas invertido")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultMovementsLimit
	}
	if filter.Limit > maxMovementsLimit {
		filter.Limit = maxMovementsLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repos.Ledger.List(ctx, filter)
}

// ConversionResult factor resuelto y cantidad convertida.
type ConversionResult struct {
	FromUnit string
	ToUnit   string
	Factor   decimal.Decimal
	Quantity decimal.Decimal
	Result   decimal.Decimal
}

// Convert resuelve el factor entre dos unidades para el producto y lo aplica a quantity.
func (uc *StockQueryUseCase) Convert(ctx context.Context, organizationID, productID, fromUnit, toUnit string, quantity decimal.Decimal) (*ConversionResult, error) {
	if fromUnit == "" || toUnit == "" {
		return nil, domain.InvalidInputf("from y to son obligatorios")
	}
	p, err := uc.product(ctx, organizationID, productID)
	if err != nil {
		return nil, err
	}
	f, err := invdomain.NewResolver(uc.repos.Units).Resolve(ctx, p, fromUnit, toUnit)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{
		FromUnit: fromUnit,
		ToUnit:   toUnit,
		Factor:   f.Decimal(),
		Quantity: quantity,
		Result:   f.Apply(quantity),
	}, nil
}
