package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
)

// errorMapping orden importa: ErrConversionNotFound también es ErrNotFound.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrConversionNotFound, fiber.StatusUnprocessableEntity, "CONVERSION_NOT_FOUND"},
	{domain.ErrProductNotPhysical, fiber.StatusUnprocessableEntity, "PRODUCT_NOT_PHYSICAL"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrInsufficientPackages, fiber.StatusConflict, "INSUFFICIENT_PACKAGES"},
	{domain.ErrInvalidState, fiber.StatusConflict, "INVALID_STATE"},
	{domain.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST"},
}

// writeError traduce errores de dominio a respuesta HTTP. Los no mapeados son 500 sin detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(errorBody(c, m.code, err.Error()))
		}
	}
	requestLogger(c).Error().Err(err).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody(c, "INTERNAL", "error interno"))
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(errorBody(c, "UNAUTHORIZED", "organización requerida en el token"))
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody(c, code, msg))
}

// errorBody incluye el X-Request-ID de la respuesta para correlacionar con los logs.
func errorBody(c *fiber.Ctx, code, msg string) dto.ErrorResponse {
	return dto.ErrorResponse{Code: code, Message: msg, RequestID: c.GetRespHeader(headerRequestID)}
}
