package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements    MovementService
	Stock        StockQueryService
	Reservations ReservationService
	Sweeper      Sweeper
	Idempotency  IdempotencyStore // opcional
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token con organización)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventory (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Stock)
	idem := IdempotencyMiddleware(deps.Idempotency)
	invGroup.Post("/receipts", idem, inventoryHandler.Receive)
	invGroup.Post("/packages", idem, inventoryHandler.ReceivePackages)
	invGroup.Post("/sales", idem, inventoryHandler.Sell)
	invGroup.Post("/adjustments", idem, inventoryHandler.Adjust)
	invGroup.Get("/stock/:productId", inventoryHandler.GetStock)
	invGroup.Get("/movements/:productId", inventoryHandler.ListMovements)
	invGroup.Get("/conversions/:productId", inventoryHandler.Convert)

	// Reservations (protegido)
	reservations := protected.Group("/reservations")
	reservationHandler := NewReservationHandler(deps.Reservations, deps.Sweeper)
	reservations.Post("/", reservationHandler.Create)
	reservations.Get("/", reservationHandler.ListActive)
	reservations.Get("/by-reference", reservationHandler.ListByReference)
	reservations.Post("/sweep", reservationHandler.Sweep)
	reservations.Post("/:id/release", reservationHandler.Release)
	reservations.Post("/:id/extend", reservationHandler.Extend)
}
