package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// ProductionHandler registros de producción con consumo de inventario.
type ProductionHandler struct {
	sess *session.Session
}

// NewProductionHandler construye el handler.
func NewProductionHandler(sess *session.Session) *ProductionHandler {
	return &ProductionHandler{sess: sess}
}

// List godoc
// @Summary      Listar producción (más reciente primero)
// @Tags         production
// @Produce      json
// @Success      200  {array}  entity.ProductionRecord
// @Router       /api/production [get]
func (h *ProductionHandler) List(c *fiber.Ctx) error {
	out := h.sess.Ledger.Production.List()
	if out == nil {
		out = []entity.ProductionRecord{}
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener registro de producción
// @Tags         production
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  entity.ProductionRecord
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production/{id} [get]
func (h *ProductionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sess.Ledger.Production.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar lote producido
// @Description  Descuenta el stock de cada ingrediente de la receta. Falla con 409 si alguno no alcanza.
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductionRequest  true  "Datos"
// @Success      201   {object}  entity.ProductionRecord
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sess.Ledger.Production.Add(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar lote producido
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.ProductionRequest  true  "Datos"
// @Success      200   {object}  entity.ProductionRecord
// @Router       /api/production/{id} [put]
func (h *ProductionHandler) Update(c *fiber.Ctx) error {
	var in dto.ProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sess.Ledger.Production.Edit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar lote producido (devuelve el stock consumido)
// @Tags         production
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/production/{id} [delete]
func (h *ProductionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sess.Ledger.Production.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
