package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// RecipeHandler CRUD de recetas; costos y precios se calculan en el servidor.
type RecipeHandler struct {
	sess *session.Session
}

// NewRecipeHandler construye el handler.
func NewRecipeHandler(sess *session.Session) *RecipeHandler {
	return &RecipeHandler{sess: sess}
}

// List godoc
// @Summary      Listar recetas
// @Tags         recipes
// @Produce      json
// @Success      200  {array}  entity.Recipe
// @Router       /api/recipes [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	out := h.sess.Ledger.Recipes.List()
	if out == nil {
		out = []entity.Recipe{}
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener receta
// @Tags         recipes
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  entity.Recipe
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/recipes/{id} [get]
func (h *RecipeHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sess.Ledger.Recipes.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear receta
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecipeRequest  true  "Datos"
// @Success      201   {object}  entity.Recipe
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/recipes [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var in dto.RecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sess.Ledger.Recipes.Add(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar receta
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.RecipeRequest  true  "Datos"
// @Success      200   {object}  entity.Recipe
// @Router       /api/recipes/{id} [put]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	var in dto.RecipeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.sess.Ledger.Recipes.Edit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar receta
// @Tags         recipes
// @Param        id   path  string  true  "ID"
// @Success      204
// @Router       /api/recipes/{id} [delete]
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	if err := h.sess.Ledger.Recipes.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
