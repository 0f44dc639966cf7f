package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	invdomain "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// MovementOptions configuración del orquestador.
type MovementOptions struct {
	// AllowNegativeStock desactiva el control de piso en ajustes negativos.
	AllowNegativeStock bool
}

// MovementUseCase registra recepciones, ventas y ajustes en el libro de inventario.
// Cada operación bloquea la fila del producto (SELECT FOR UPDATE) y escribe todas sus
// entradas en una sola transacción: o se confirma todo o nada.
type MovementUseCase struct {
	txRunner      TxRunner
	allowNegative bool
	now           clock
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, opts MovementOptions) *MovementUseCase {
	return &MovementUseCase{
		txRunner:      txRunner,
		allowNegative: opts.AllowNegativeStock,
		now:           systemClock,
	}
}

// ReceiveInput entrada de una recepción de stock suelto.
type ReceiveInput struct {
	OrganizationID string
	UserID         string
	ProductID      string
	WarehouseID    *string
	Quantity       decimal.Decimal
	UnitCode       string
	UnitCost       *decimal.Decimal // costo por unidad ingresada
	Currency       *string
}

// ReceiveResult resultado de una recepción.
type ReceiveResult struct {
	TransactionID      string
	QuantityInBaseUnit decimal.Decimal
	UnitCode           string
}

// Receive convierte la cantidad a unidad base y agrega una entrada receipt.
func (uc *MovementUseCase) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if err := validateQuantity(in.Quantity, in.UnitCode); err != nil {
		return nil, err
	}
	if err := validateCost(in.UnitCost, in.Currency); err != nil {
		return nil, err
	}

	var res *ReceiveResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := lockPhysicalProduct(ctx, repos, in.OrganizationID, in.ProductID)
		if err != nil {
			return err
		}
		if err := checkWarehouse(ctx, repos, in.OrganizationID, in.WarehouseID); err != nil {
			return err
		}
		f, err := invdomain.NewResolver(repos.Units).Resolve(ctx, product, in.UnitCode, product.BaseUnitCode)
		if err != nil {
			return err
		}
		qtyBase := f.Apply(in.Quantity)
		if !qtyBase.IsPositive() {
			return domain.InvalidInputf("cantidad convertida no positiva")
		}

		w := uc.newWriter(in.OrganizationID, product.ID, in.WarehouseID, in.UserID)
		e := w.entry(entity.MovementReceipt, entity.StockFormLoose, qtyBase, in.UnitCode, in.Quantity)
		// El costo se guarda por unidad base para que el promedio ponderado sea homogéneo.
		e.UnitCost = costPerBase(in.UnitCost, f)
		e.Currency = in.Currency
		if err := repos.Ledger.Append(ctx, e); err != nil {
			return err
		}
		res = &ReceiveResult{TransactionID: w.txID, QuantityInBaseUnit: qtyBase, UnitCode: product.BaseUnitCode}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReceivePackagesInput entrada de una recepción de empaques sellados.
type ReceivePackagesInput struct {
	OrganizationID string
	UserID         string
	ProductID      string
	WarehouseID    *string
	Count          int64
	UnitCode       string           // unidad de empaque
	UnitCost       *decimal.Decimal // costo por empaque
	Currency       *string
}

// ReceivePackagesResult resultado de una recepción de empaques.
type ReceivePackagesResult struct {
	TransactionID      string
	HandlingUnitIDs    []string
	QuantityInBaseUnit decimal.Decimal
	UnitCode           string
}

// ReceivePackages registra empaques físicos sellados: una entrada receipt en forma empacada
// y una unidad de manejo por empaque. No suma al stock suelto hasta que se desempaque.
func (uc *MovementUseCase) ReceivePackages(ctx context.Context, in ReceivePackagesInput) (*ReceivePackagesResult, error) {
	if in.Count <= 0 || in.UnitCode == "" {
		return nil, domain.InvalidInputf("count debe ser positivo y unit_code es obligatorio")
	}
	if err := validateCost(in.UnitCost, in.Currency); err != nil {
		return nil, err
	}

	var res *ReceivePackagesResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := lockPhysicalProduct(ctx, repos, in.OrganizationID, in.ProductID)
		if err != nil {
			return err
		}
		if err := checkWarehouse(ctx, repos, in.OrganizationID, in.WarehouseID); err != nil {
			return err
		}
		unit, err := repos.Units.GetUnit(ctx, in.UnitCode)
		if err != nil {
			return err
		}
		if unit == nil || !unit.IsPackaging {
			return domain.InvalidInputf("%s no es una unidad de empaque", in.UnitCode)
		}
		f, err := invdomain.NewResolver(repos.Units).Resolve(ctx, product, in.UnitCode, product.BaseUnitCode)
		if err != nil {
			return err
		}
		count := decimal.NewFromInt(in.Count)
		qtyBase := f.Apply(count)

		w := uc.newWriter(in.OrganizationID, product.ID, in.WarehouseID, in.UserID)
		e := w.entry(entity.MovementReceipt, entity.StockFormPackaged, qtyBase, in.UnitCode, count)
		e.UnitCost = costPerBase(in.UnitCost, f)
		e.Currency = in.Currency
		if err := repos.Ledger.Append(ctx, e); err != nil {
			return err
		}

		units := make([]*entity.HandlingUnit, 0, in.Count)
		ids := make([]string, 0, in.Count)
		for i := int64(0); i < in.Count; i++ {
			hu := &entity.HandlingUnit{
				ID:             uuid.New().String(),
				OrganizationID: in.OrganizationID,
				ProductID:      product.ID,
				WarehouseID:    in.WarehouseID,
				UnitCode:       in.UnitCode,
				Status:         entity.HandlingUnitSealed,
				CreatedAt:      w.at,
			}
			units = append(units, hu)
			ids = append(ids, hu.ID)
		}
		if err := repos.HandlingUnits.CreateMany(ctx, units); err != nil {
			return err
		}
		res = &ReceivePackagesResult{TransactionID: w.txID, HandlingUnitIDs: ids, QuantityInBaseUnit: qtyBase, UnitCode: product.BaseUnitCode}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SellLine línea de venta en su unidad ingresada.
type SellLine struct {
	Quantity decimal.Decimal
	UnitCode string
}

// SellInput entrada de una venta.
type SellInput struct {
	OrganizationID string
	UserID         string
	ProductID      string
	WarehouseID    *string
	Lines          []SellLine
}

// SellResult resultado de una venta.
type SellResult struct {
	TransactionID     string
	TotalRequested    decimal.Decimal
	PackagesOpened    int64
	PackagingUnit     string
	TotalQtyRemaining decimal.Decimal
	UnitCode          string
}

// Sell descuenta stock suelto. Si no alcanza, abre el mínimo de empaques sellados
// (división techo) de la unidad de empaque más pequeña que tenga suficientes empaques.
func (uc *MovementUseCase) Sell(ctx context.Context, in SellInput) (*SellResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.InvalidInputf("la venta requiere al menos una línea")
	}
	for i, l := range in.Lines {
		if err := validateQuantity(l.Quantity, l.UnitCode); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
	}

	var res *SellResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := lockPhysicalProduct(ctx, repos, in.OrganizationID, in.ProductID)
		if err != nil {
			return err
		}
		if err := checkWarehouse(ctx, repos, in.OrganizationID, in.WarehouseID); err != nil {
			return err
		}
		resolver := invdomain.NewResolver(repos.Units)

		// 1. Convertir cada línea a unidad base
		lineBase := make([]decimal.Decimal, len(in.Lines))
		total := decimal.Zero
		for i, l := range in.Lines {
			q, err := resolver.ToBase(ctx, product, l.Quantity, l.UnitCode)
			if err != nil {
				return err
			}
			if !q.IsPositive() {
				return domain.InvalidInputf("línea %d: cantidad convertida no positiva", i+1)
			}
			lineBase[i] = q
			total = total.Add(q)
		}

		// 2. Stock actual bajo el bloqueo del producto, en el mismo alcance en que se escribe
		scope := repository.LedgerScope{
			OrganizationID: in.OrganizationID,
			ProductID:      product.ID,
			WarehouseID:    in.WarehouseID,
			ExactWarehouse: true,
			StockForm:      entity.StockFormLoose,
		}
		onHand, err := currentStock(ctx, repos.Ledger, scope)
		if err != nil {
			return err
		}

		w := uc.newWriter(in.OrganizationID, product.ID, in.WarehouseID, in.UserID)
		var entries []*entity.LedgerEntry
		res = &SellResult{TransactionID: w.txID, TotalRequested: total, UnitCode: product.BaseUnitCode}

		// 3-6. Desempaque automático si el stock suelto no alcanza
		if onHand.LessThan(total) {
			deficit := total.Sub(onHand)
			unpack, err := planUnpack(ctx, repos, resolver, product, in.WarehouseID, deficit)
			if err != nil {
				return err
			}
			units, err := repos.HandlingUnits.LockSealed(ctx, unpack.scope, unpack.packages)
			if err != nil {
				return err
			}
			if int64(len(units)) < unpack.packages {
				return fmt.Errorf("%w: %s necesita %d, bloqueados %d", domain.ErrInsufficientPackages, unpack.option.UnitCode, unpack.packages, len(units))
			}
			ids := make([]string, len(units))
			for i, hu := range units {
				ids[i] = hu.ID
			}
			if err := repos.HandlingUnits.MarkOpened(ctx, ids, w.at); err != nil {
				return err
			}
			packages := decimal.NewFromInt(unpack.packages)
			unpacked := packages.Mul(unpack.option.BaseQuantity)
			outEntry := w.entry(entity.MovementDisassemblyOut, entity.StockFormPackaged, unpacked, unpack.option.UnitCode, packages)
			inEntry := w.entry(entity.MovementDisassemblyIn, entity.StockFormLoose, unpacked, product.BaseUnitCode, unpacked)
			// el par de desempaque queda en la bodega del empaque abierto
			outEntry.WarehouseID, inEntry.WarehouseID = units[0].WarehouseID, units[0].WarehouseID
			entries = append(entries, outEntry, inEntry)
			onHand = onHand.Add(unpacked)
			res.PackagesOpened = unpack.packages
			res.PackagingUnit = unpack.option.UnitCode
		}

		// 7. Una salida por línea, en su unidad ingresada para auditoría
		for i, l := range in.Lines {
			entries = append(entries, w.entry(entity.MovementIssue, entity.StockFormLoose, lineBase[i], l.UnitCode, l.Quantity))
		}
		if err := repos.Ledger.Append(ctx, entries...); err != nil {
			return err
		}
		res.TotalQtyRemaining = onHand.Sub(total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type unpackPlan struct {
	option   invdomain.PackagingOption
	packages int64
	scope    repository.HandlingUnitScope
}

// planUnpack elige la unidad de empaque: la de menor contenido con empaques sellados suficientes.
// Sin ningún empaque sellado disponible el faltante es de stock; con empaques pero insuficientes, de empaques.
func planUnpack(ctx context.Context, repos Repos, resolver *invdomain.Resolver, product *entity.Product, warehouseID *string, deficit decimal.Decimal) (*unpackPlan, error) {
	opts, err := resolver.PackagingOptions(ctx, product)
	if err != nil {
		return nil, err
	}
	available := false
	for _, opt := range opts {
		scope := repository.HandlingUnitScope{
			OrganizationID: product.OrganizationID,
			ProductID:      product.ID,
			WarehouseID:    warehouseID,
			ExactWarehouse: true,
			UnitCode:       opt.UnitCode,
		}
		sealed, err := repos.HandlingUnits.CountSealed(ctx, scope)
		if err != nil {
			return nil, err
		}
		if sealed == 0 {
			continue
		}
		available = true
		needed := invdomain.PackagesNeeded(deficit, opt.BaseQuantity)
		if sealed >= needed {
			return &unpackPlan{option: opt, packages: needed, scope: scope}, nil
		}
	}
	if !available {
		return nil, fmt.Errorf("%w: faltan %s %s", domain.ErrInsufficientStock, deficit, product.BaseUnitCode)
	}
	return nil, fmt.Errorf("%w: faltan %s %s", domain.ErrInsufficientPackages, deficit, product.BaseUnitCode)
}

// AdjustDirection sentido de un ajuste.
type AdjustDirection string

const (
	AdjustPositive AdjustDirection = "pos"
	AdjustNegative AdjustDirection = "neg"
)

// AdjustInput entrada de un ajuste de inventario.
type AdjustInput struct {
	OrganizationID string
	UserID         string
	ProductID      string
	WarehouseID    string
	Quantity       decimal.Decimal
	UnitCode       string
	Direction      AdjustDirection
	Reason         string
}

// AdjustResult resultado de un ajuste.
type AdjustResult struct {
	TransactionID      string
	QuantityInBaseUnit decimal.Decimal
	UnitCode           string
}

// Adjust agrega una entrada adjustment_pos o adjustment_neg. Sin control de piso salvo que
// AllowNegativeStock esté desactivado.
func (uc *MovementUseCase) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.WarehouseID == "" {
		return nil, domain.InvalidInputf("warehouse_id es obligatorio en ajustes")
	}
	if err := validateQuantity(in.Quantity, in.UnitCode); err != nil {
		return nil, err
	}
	var mt entity.MovementType
	switch in.Direction {
	case AdjustPositive:
		mt = entity.MovementAdjustmentPos
	case AdjustNegative:
		mt = entity.MovementAdjustmentNeg
	default:
		return nil, domain.InvalidInputf("dirección de ajuste inválida: %q", in.Direction)
	}
	if in.Reason == "" {
		return nil, domain.InvalidInputf("el motivo del ajuste es obligatorio")
	}

	var res *AdjustResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos Repos) error {
		product, err := lockPhysicalProduct(ctx, repos, in.OrganizationID, in.ProductID)
		if err != nil {
			return err
		}
		warehouseID := in.WarehouseID
		if err := checkWarehouse(ctx, repos, in.OrganizationID, &warehouseID); err != nil {
			return err
		}
		qtyBase, err := invdomain.NewResolver(repos.Units).ToBase(ctx, product, in.Quantity, in.UnitCode)
		if err != nil {
			return err
		}
		if !qtyBase.IsPositive() {
			return domain.InvalidInputf("cantidad convertida no positiva")
		}
		if mt == entity.MovementAdjustmentNeg && !uc.allowNegative {
			onHand, err := currentStock(ctx, repos.Ledger, repository.LedgerScope{
				OrganizationID: in.OrganizationID,
				ProductID:      product.ID,
				WarehouseID:    &warehouseID,
				ExactWarehouse: true,
				StockForm:      entity.StockFormLoose,
			})
			if err != nil {
				return err
			}
			if onHand.LessThan(qtyBase) {
				return fmt.Errorf("%w: disponible %s, ajuste %s", domain.ErrInsufficientStock, onHand, qtyBase)
			}
		}

		w := uc.newWriter(in.OrganizationID, product.ID, &warehouseID, in.UserID)
		e := w.entry(mt, entity.StockFormLoose, qtyBase, in.UnitCode, in.Quantity)
		e.Reason = in.Reason
		if err := repos.Ledger.Append(ctx, e); err != nil {
			return err
		}
		res = &AdjustResult{TransactionID: w.txID, QuantityInBaseUnit: qtyBase, UnitCode: product.BaseUnitCode}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// entryWriter arma las entradas de una misma operación (mismo transaction_id y fecha).
type entryWriter struct {
	txID           string
	at             time.Time
	organizationID string
	productID      string
	warehouseID    *string
	userID         string
}

func (uc *MovementUseCase) newWriter(organizationID, productID string, warehouseID *string, userID string) *entryWriter {
	return &entryWriter{
		txID:           uuid.New().String(),
		at:             uc.now(),
		organizationID: organizationID,
		productID:      productID,
		warehouseID:    warehouseID,
		userID:         userID,
	}
}

func (w *entryWriter) entry(mt entity.MovementType, form entity.StockForm, qtyBase decimal.Decimal, unitCode string, qtyEntered decimal.Decimal) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:                    uuid.New().String(),
		TransactionID:         w.txID,
		OrganizationID:        w.organizationID,
		ProductID:             w.productID,
		WarehouseID:           w.warehouseID,
		OccurredAt:            w.at,
		MovementType:          mt,
		StockForm:             form,
		QuantityInBaseUnit:    qtyBase,
		UnitCode:              unitCode,
		QuantityInEnteredUnit: qtyEntered,
		CreatedBy:             w.userID,
	}
}

// lockPhysicalProduct bloquea el producto y valida que exista en la organización y sea físico.
func lockPhysicalProduct(ctx context.Context, repos Repos, organizationID, productID string) (*entity.Product, error) {
	if organizationID == "" || productID == "" {
		return nil, domain.InvalidInputf("organization_id y product_id son obligatorios")
	}
	product, err := repos.Products.GetForUpdate(ctx, organizationID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	}
	if !product.IsPhysical {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotPhysical, productID)
	}
	return product, nil
}

func checkWarehouse(ctx context.Context, repos Repos, organizationID string, warehouseID *string) error {
	if warehouseID == nil {
		return nil
	}
	wh, err := repos.Warehouses.GetByID(ctx, organizationID, *warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return fmt.Errorf("bodega %s: %w", *warehouseID, domain.ErrNotFound)
	}
	return nil
}

func currentStock(ctx context.Context, ledger repository.LedgerRepository, scope repository.LedgerScope) (decimal.Decimal, error) {
	sums, err := ledger.SumByType(ctx, scope)
	if err != nil {
		return decimal.Zero, err
	}
	return invdomain.Fold(sums), nil
}

func validateQuantity(q decimal.Decimal, unitCode string) error {
	if !q.IsPositive() {
		return domain.InvalidInputf("la cantidad debe ser positiva")
	}
	if !q.Equal(q.Round(invdomain.QuantityScale)) {
		return domain.InvalidInputf("la cantidad admite hasta %d decimales", invdomain.QuantityScale)
	}
	if unitCode == "" {
		return domain.InvalidInputf("unit_code es obligatorio")
	}
	return nil
}

func validateCost(cost *decimal.Decimal, currency *string) error {
	if cost != nil && cost.IsNegative() {
		return domain.InvalidInputf("el costo no puede ser negativo")
	}
	if currency != nil && cost == nil {
		return domain.InvalidInputf("currency requiere unit_cost")
	}
	return nil
}

// costPerBase traduce un costo por unidad ingresada a costo por unidad base.
func costPerBase(cost *decimal.Decimal, toBase invdomain.Factor) *decimal.Decimal {
	if cost == nil {
		return nil
	}
	c := toBase.Inverse().Apply(*cost)
	return &c
}
