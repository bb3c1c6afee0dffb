package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// identityHolder lo que el guard necesita de la sesión. Lo implementa *session.Session.
type identityHolder interface {
	Current() *entity.Identity
}

// RequireSessionOwner impide operar sobre los datos de otro usuario: si la petición trae
// identidad, debe coincidir con la de la sesión activa. Usar después de OptionalAuthMiddleware.
//
//   - 401 Unauthorized → sin token mientras la sesión activa es de un usuario (modo remoto).
//   - 409 Conflict → la sesión activa pertenece a otro usuario o está en modo local.
//   - Sin token en modo local pasa: el pool local no tiene dueño.
func RequireSessionOwner(holder identityHolder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller := GetIdentity(c)
		current := holder.Current()
		if caller == nil {
			if current != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Code:    "UNAUTHORIZED",
					Message: "la sesión activa pertenece a un usuario; envíe su token Bearer",
				})
			}
			return c.Next()
		}
		if current == nil || current.ID != caller.ID {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Code:    "SESSION_MISMATCH",
				Message: "la sesión activa no pertenece a este usuario; inicie sesión con POST /api/session",
			})
		}
		return c.Next()
	}
}
