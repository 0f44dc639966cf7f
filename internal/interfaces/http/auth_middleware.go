package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/pkg/jwt"
)

// Locals keys para UserID y OrganizationID en Fiber.
const (
	LocalUserID         = "user_id"
	LocalOrganizationID = "organization_id"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y OrganizationID a c.Locals.
// Toda operación de inventario queda acotada a la organización del token.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody(c, "MISSING_TOKEN", "Authorization header requerido"))
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody(c, "INVALID_TOKEN", "formato: Bearer <token>"))
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody(c, "MISSING_TOKEN", "token vacío"))
		}
		userID, organizationID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(errorBody(c, "INVALID_TOKEN", "token inválido o expirado"))
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalOrganizationID, organizationID)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetOrganizationID devuelve la organización del contexto (después del middleware de auth).
func GetOrganizationID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalOrganizationID).(string)
	return s
}
