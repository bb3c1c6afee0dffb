package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/ledger"
	"github.com/jhoicas/Contabilidad-api/internal/application/report"
)

// TransactionHandler maneja las peticiones HTTP de transacciones.
type TransactionHandler struct {
	svc     *ledger.TransactionService
	reports *report.Service
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(svc *ledger.TransactionService, reports *report.Service) *TransactionHandler {
	return &TransactionHandler{svc: svc, reports: reports}
}

func filterFromQuery(c *fiber.Ctx) report.Filter {
	return report.Filter{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Type:      c.Query("type"),
		Category:  c.Query("category"),
	}
}

// List godoc
// @Summary      Listar transacciones filtradas
// @Tags         transactions
// @Produce      json
// @Param        startDate  query  string  false  "YYYY-MM-DD inclusive"
// @Param        endDate    query  string  false  "YYYY-MM-DD inclusive"
// @Param        type       query  string  false  "income | expense | all"
// @Param        category   query  string  false  "Categoría exacta"
// @Success      200  {array}   entity.Transaction
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	out, err := h.reports.Transactions(filterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener transacción
// @Tags         transactions
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  entity.Transaction
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar transacción (aplicación optimista)
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransactionRequest  true  "Datos"
// @Success      201   {object}  entity.Transaction
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions [post]
func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Add(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar transacción
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.TransactionRequest  true  "Datos"
// @Success      200   {object}  entity.Transaction
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.Edit(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar transacción
// @Tags         transactions
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
