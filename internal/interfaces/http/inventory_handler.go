package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// MovementService escrituras sobre el libro (implementado por inventory.MovementUseCase).
type MovementService interface {
	Receive(ctx context.Context, in inventory.ReceiveInput) (*inventory.ReceiveResult, error)
	ReceivePackages(ctx context.Context, in inventory.ReceivePackagesInput) (*inventory.ReceivePackagesResult, error)
	Sell(ctx context.Context, in inventory.SellInput) (*inventory.SellResult, error)
	Adjust(ctx context.Context, in inventory.AdjustInput) (*inventory.AdjustResult, error)
}

// StockQueryService lecturas derivadas del libro (implementado por inventory.StockQueryUseCase).
type StockQueryService interface {
	CurrentStock(ctx context.Context, organizationID, productID string, warehouseID *string) (*entity.StockSnapshot, error)
	ListMovements(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, error)
	Convert(ctx context.Context, organizationID, productID, fromUnit, toUnit string, quantity decimal.Decimal) (*inventory.ConversionResult, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	movements MovementService
	stock     StockQueryService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements MovementService, stock StockQueryService) *InventoryHandler {
	return &InventoryHandler{movements: movements, stock: stock}
}

// Receive godoc
// @Summary      Recibir stock suelto
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string              false  "clave de idempotencia"
// @Param        body             body    dto.ReceiveRequest  true   "product_id, quantity, unit_code, unit_cost opcional"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	orgID, userID := GetOrganizationID(c), GetUserID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.ReceiveRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.movements.Receive(c.Context(), inventory.ReceiveInput{
		OrganizationID: orgID,
		UserID:         userID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Quantity:       in.Quantity,
		UnitCode:       in.UnitCode,
		UnitCost:       in.UnitCost,
		Currency:       in.Currency,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{
		TransactionID:      res.TransactionID,
		QuantityInBaseUnit: res.QuantityInBaseUnit,
		UnitCode:           res.UnitCode,
	})
}

// ReceivePackages godoc
// @Summary      Recibir empaques sellados
// @Description  Registra count empaques físicos de la unidad de empaque indicada. No suma al stock suelto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                      false  "clave de idempotencia"
// @Param        body             body    dto.ReceivePackagesRequest  true   "product_id, count, unit_code"
// @Success      201  {object}  dto.ReceivePackagesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/packages [post]
func (h *InventoryHandler) ReceivePackages(c *fiber.Ctx) error {
	orgID, userID := GetOrganizationID(c), GetUserID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.ReceivePackagesRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.movements.ReceivePackages(c.Context(), inventory.ReceivePackagesInput{
		OrganizationID: orgID,
		UserID:         userID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Count:          in.Count,
		UnitCode:       in.UnitCode,
		UnitCost:       in.UnitCost,
		Currency:       in.Currency,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceivePackagesResponse{
		MovementResponse: dto.MovementResponse{
			TransactionID:      res.TransactionID,
			QuantityInBaseUnit: res.QuantityInBaseUnit,
			UnitCode:           res.UnitCode,
		},
		HandlingUnitIDs: res.HandlingUnitIDs,
	})
}

// Sell godoc
// @Summary      Registrar venta
// @Description  Descuenta stock suelto; si no alcanza abre el mínimo de empaques sellados.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string           false  "clave de idempotencia"
// @Param        body             body    dto.SellRequest  true   "product_id, lines[]"
// @Success      201  {object}  dto.SellResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) Sell(c *fiber.Ctx) error {
	orgID, userID := GetOrganizationID(c), GetUserID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.SellRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	lines := make([]inventory.SellLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.SellLine{Quantity: l.Quantity, UnitCode: l.UnitCode})
	}
	res, err := h.movements.Sell(c.Context(), inventory.SellInput{
		OrganizationID: orgID,
		UserID:         userID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Lines:          lines,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SellResponse{
		TransactionID:     res.TransactionID,
		TotalRequested:    res.TotalRequested,
		PackagesOpened:    res.PackagesOpened,
		PackagingUnit:     res.PackagingUnit,
		TotalQtyRemaining: res.TotalQtyRemaining,
		UnitCode:          res.UnitCode,
	})
}

// Adjust godoc
// @Summary      Ajuste manual de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string             false  "clave de idempotencia"
// @Param        body             body    dto.AdjustRequest  true   "direction pos|neg, reason obligatorio"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	orgID, userID := GetOrganizationID(c), GetUserID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.movements.Adjust(c.Context(), inventory.AdjustInput{
		OrganizationID: orgID,
		UserID:         userID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		Quantity:       in.Quantity,
		UnitCode:       in.UnitCode,
		Direction:      inventory.AdjustDirection(in.Direction),
		Reason:         in.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResponse{
		TransactionID:      res.TransactionID,
		QuantityInBaseUnit: res.QuantityInBaseUnit,
		UnitCode:           res.UnitCode,
	})
}

// GetStock godoc
// @Summary      Stock actual derivado del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId     path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega. Vacío = todas."
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	snap, err := h.stock.CurrentStock(c.Context(), orgID, c.Params("productId"), optionalQuery(c, "warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID:       snap.ProductID,
		WarehouseID:     snap.WarehouseID,
		UnitCode:        snap.UnitCode,
		TotalQty:        snap.OnHand,
		Packaged:        snap.Packaged,
		Reserved:        snap.Reserved,
		Available:       snap.Available,
		AverageUnitCost: snap.AverageUnitCost,
	})
}

// ListMovements godoc
// @Summary      Entradas del libro de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId     path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Param        limit         query  int     false  "máx 500, por defecto 50"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{productId} [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "VALIDATION", "limit y offset deben ser enteros")
	}
	if err := validate.Struct(page); err != nil {
		return badRequest(c, "VALIDATION", validationMessage(err))
	}
	page = page.Normalized()
	from, err := optionalTime(c, "from")
	if err != nil {
		return badRequest(c, "VALIDATION", "from debe ser RFC3339")
	}
	to, err := optionalTime(c, "to")
	if err != nil {
		return badRequest(c, "VALIDATION", "to debe ser RFC3339")
	}

	list, err := h.stock.ListMovements(c.Context(), repository.LedgerFilter{
		OrganizationID: orgID,
		ProductID:      c.Params("productId"),
		WarehouseID:    optionalQuery(c, "warehouse_id"),
		From:           from,
		To:             to,
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, toLedgerEntryResponse(e))
	}
	return c.JSON(dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Returned: len(items)},
	})
}

// Convert godoc
// @Summary      Convertir cantidad entre unidades del producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "ID del producto"
// @Param        from       query  string  true   "unidad origen"
// @Param        to         query  string  true   "unidad destino"
// @Param        quantity   query  string  false  "cantidad decimal, por defecto 1"
// @Success      200  {object}  dto.ConversionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/conversions/{productId} [get]
func (h *InventoryHandler) Convert(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	qty, err := decimal.NewFromString(c.Query("quantity", "1"))
	if err != nil {
		return badRequest(c, "VALIDATION", "quantity debe ser decimal")
	}
	productID := c.Params("productId")
	res, err := h.stock.Convert(c.Context(), orgID, productID, c.Query("from"), c.Query("to"), qty)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConversionResponse{
		ProductID: productID,
		From:      res.FromUnit,
		To:        res.ToUnit,
		Factor:    res.Factor,
		Quantity:  res.Quantity,
		Result:    res.Result,
	})
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:                    e.ID,
		TransactionID:         e.TransactionID,
		ProductID:             e.ProductID,
		WarehouseID:           e.WarehouseID,
		OccurredAt:            e.OccurredAt,
		MovementType:          string(e.MovementType),
		StockForm:             string(e.StockForm),
		QuantityInBaseUnit:    e.QuantityInBaseUnit,
		UnitCode:              e.UnitCode,
		QuantityInEnteredUnit: e.QuantityInEnteredUnit,
		UnitCost:              e.UnitCost,
		Currency:              e.Currency,
		Reason:                e.Reason,
		CreatedBy:             e.CreatedBy,
	}
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func optionalTime(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
