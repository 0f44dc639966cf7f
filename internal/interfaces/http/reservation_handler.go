package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// ReservationService ciclo de vida de reservas (implementado por inventory.ReservationUseCase).
type ReservationService interface {
	Create(ctx context.Context, in inventory.CreateReservationInput) (*entity.Reservation, error)
	Release(ctx context.Context, organizationID, id, reason string) (*entity.Reservation, error)
	Extend(ctx context.Context, organizationID, id string, expiresAt time.Time) (*entity.Reservation, error)
	ListActive(ctx context.Context, organizationID string) ([]*entity.Reservation, error)
	ListByReference(ctx context.Context, organizationID, referenceType, referenceID string) ([]*entity.Reservation, error)
}

// Sweeper libera reservas vencidas bajo demanda.
type Sweeper interface {
	Sweep(ctx context.Context, organizationID string) (*inventory.SweepResult, error)
}

// ReservationHandler maneja las peticiones HTTP de reservas (protegido).
type ReservationHandler struct {
	reservations ReservationService
	sweeper      Sweeper
}

// NewReservationHandler construye el handler.
func NewReservationHandler(reservations ReservationService, sweeper Sweeper) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, sweeper: sweeper}
}

// Create godoc
// @Summary      Crear reserva
// @Description  Retiene cantidad contra un documento externo. Sin expires_at la reserva es permanente.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "product_id, quantity, unit_code, reference_type, reference_id"
// @Success      201  {object}  dto.ReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.CreateReservationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.reservations.Create(c.Context(), inventory.CreateReservationInput{
		OrganizationID: orgID,
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		BatchID:        in.BatchID,
		HandlingUnitID: in.HandlingUnitID,
		Quantity:       in.Quantity,
		UnitCode:       in.UnitCode,
		ReferenceType:  in.ReferenceType,
		ReferenceID:    in.ReferenceID,
		ExpiresAt:      in.ExpiresAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationResponse(res))
}

// ListActive godoc
// @Summary      Reservas activas de la organización
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReservationListResponse
// @Router       /api/reservations [get]
func (h *ReservationHandler) ListActive(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	list, err := h.reservations.ListActive(c.Context(), orgID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationList(list))
}

// ListByReference godoc
// @Summary      Reservas de un documento externo
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        type  query  string  true  "tipo de referencia (sales_order...)"
// @Param        id    query  string  true  "ID de la referencia"
// @Success      200  {object}  dto.ReservationListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reservations/by-reference [get]
func (h *ReservationHandler) ListByReference(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	list, err := h.reservations.ListByReference(c.Context(), orgID, c.Query("type"), c.Query("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationList(list))
}

// Release godoc
// @Summary      Liberar reserva
// @Description  Idempotente: liberar una reserva ya liberada devuelve el registro guardado.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true   "ID de la reserva"
// @Param        body  body  dto.ReleaseReservationRequest  false  "reason (por defecto cancelled)"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.ReleaseReservationRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	res, err := h.reservations.Release(c.Context(), orgID, c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationResponse(res))
}

// Extend godoc
// @Summary      Extender vencimiento de una reserva activa
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID de la reserva"
// @Param        body  body  dto.ExtendReservationRequest  true  "expires_at futuro"
// @Success      200  {object}  dto.ReservationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{id}/extend [post]
func (h *ReservationHandler) Extend(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	var in dto.ExtendReservationRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	res, err := h.reservations.Extend(c.Context(), orgID, c.Params("id"), in.ExpiresAt)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationResponse(res))
}

// Sweep godoc
// @Summary      Liberar reservas vencidas de la organización
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SweepResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reservations/sweep [post]
func (h *ReservationHandler) Sweep(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return unauthorized(c)
	}
	res, err := h.sweeper.Sweep(c.Context(), orgID)
	if err != nil {
		return writeError(c, err)
	}
	ids := res.ReleasedIDs
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(dto.SweepResponse{Released: res.Count(), ReleasedIDs: ids, SweptAt: res.SweptAt})
}

func toReservationResponse(r *entity.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:                    r.ID,
		ProductID:             r.ProductID,
		WarehouseID:           r.WarehouseID,
		BatchID:               r.BatchID,
		HandlingUnitID:        r.HandlingUnitID,
		QuantityInBaseUnit:    r.QuantityInBaseUnit,
		UnitCode:              r.UnitCode,
		QuantityInEnteredUnit: r.QuantityInEnteredUnit,
		ReferenceType:         r.ReferenceType,
		ReferenceID:           r.ReferenceID,
		Active:                r.Active(),
		CreatedAt:             r.CreatedAt,
		ExpiresAt:             r.ExpiresAt,
		ReleasedAt:            r.ReleasedAt,
		ReleaseReason:         r.ReleaseReason,
	}
}

func toReservationList(list []*entity.Reservation) dto.ReservationListResponse {
	items := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toReservationResponse(r))
	}
	return dto.ReservationListResponse{Items: items, Total: len(items)}
}
