package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Comercial-api/internal/application/dto"
)

// RequireRole devuelve un middleware Fiber que autoriza solo los roles dados.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalRole).
//
// Comportamiento:
//   - 401 Unauthorized → token sin claim de rol (tokens legacy).
//   - 403 Forbidden    → rol presente pero no permitido en la ruta.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_ROLE",
				Message: "el token no incluye rol",
			})
		}
		for _, r := range allowed {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "rol sin acceso a esta ruta",
		})
	}
}
