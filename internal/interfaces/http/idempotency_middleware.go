package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/domain"
)

// HeaderIdempotencyKey cabecera opcional en los POST de movimientos.
const HeaderIdempotencyKey = "Idempotency-Key"

const idempotencyTimeout = 2 * time.Second

// IdempotencyStore registra claves de petición ya vistas (Redis en producción).
type IdempotencyStore interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// IdempotencyMiddleware rechaza con 409 DUPLICATE_REQUEST una clave repetida dentro del TTL.
// La clave se acota por organización y ruta; si la operación falla se libera para permitir el reintento.
// Sin cabecera o sin store la petición pasa sin control.
func IdempotencyMiddleware(store IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" || store == nil {
			return c.Next()
		}
		if len(key) > 128 {
			return badRequest(c, "VALIDATION", "Idempotency-Key demasiado larga")
		}
		scoped := GetOrganizationID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key

		ctx, cancel := context.WithTimeout(c.Context(), idempotencyTimeout)
		ok, err := store.Acquire(ctx, scoped)
		cancel()
		if err != nil {
			requestLogger(c).Error().Err(err).Msg("idempotency store no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(errorBody(c, "IDEMPOTENCY_UNAVAILABLE", "no se pudo verificar Idempotency-Key"))
		}
		if !ok {
			return writeError(c, fmt.Errorf("%w: Idempotency-Key ya utilizada", domain.ErrDuplicateRequest))
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			ctx, cancel := context.WithTimeout(context.Background(), idempotencyTimeout)
			if rerr := store.Release(ctx, scoped); rerr != nil {
				requestLogger(c).Warn().Err(rerr).Msg("no se pudo liberar Idempotency-Key")
			}
			cancel()
		}
		return err
	}
}
