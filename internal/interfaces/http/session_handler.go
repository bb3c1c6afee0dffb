package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/application/syncengine"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// SessionHandler transiciones de identidad, estado de sincronización e historial.
type SessionHandler struct {
	sess *session.Session
}

// NewSessionHandler construye el handler.
func NewSessionHandler(sess *session.Session) *SessionHandler {
	return &SessionHandler{sess: sess}
}

// StatusResponse estado visible de la sesión.
type StatusResponse struct {
	syncengine.Snapshot
	User *entity.Identity `json:"user"`
}

func (h *SessionHandler) status() StatusResponse {
	return StatusResponse{Snapshot: h.sess.Status(), User: h.sess.Current()}
}

// Open godoc
// @Summary      Iniciar sesión remota con la identidad del token
// @Tags         session
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/session [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	if err := h.sess.SetIdentity(c.UserContext(), GetIdentity(c), true); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.status())
}

// Close godoc
// @Summary      Cerrar sesión y volver al modo local
// @Tags         session
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/session [delete]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.sess.SetIdentity(c.UserContext(), nil, true); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.status())
}

// Reload godoc
// @Summary      Recargar todas las colecciones del alcance activo
// @Tags         session
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/session/reload [post]
func (h *SessionHandler) Reload(c *fiber.Ctx) error {
	if err := h.sess.Reload(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(h.status())
}

// Status godoc
// @Summary      Modo, carga y último error de sincronización
// @Tags         session
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /api/status [get]
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.status())
}

// History godoc
// @Summary      Historial de eventos (más reciente primero)
// @Tags         session
// @Produce      json
// @Success      200  {array}  entity.AuditEntry
// @Router       /api/history [get]
func (h *SessionHandler) History(c *fiber.Ctx) error {
	entries, err := h.sess.History(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	if entries == nil {
		entries = []entity.AuditEntry{}
	}
	return c.JSON(entries)
}
