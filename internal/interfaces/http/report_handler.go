package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
)

// ReportHandler resúmenes filtrados en JSON y PDF.
type ReportHandler struct {
	svc *report.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Summary godoc
// @Summary      Totales por moneda y por categoría
// @Tags         reports
// @Produce      json
// @Param        startDate  query  string  false  "YYYY-MM-DD inclusive"
// @Param        endDate    query  string  false  "YYYY-MM-DD inclusive"
// @Param        type       query  string  false  "income | expense | all"
// @Param        category   query  string  false  "Categoría exacta"
// @Success      200  {object}  report.Summary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.svc.Summary(filterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SummaryPDF godoc
// @Summary      Resumen en PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        startDate  query  string  false  "YYYY-MM-DD inclusive"
// @Param        endDate    query  string  false  "YYYY-MM-DD inclusive"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/summary.pdf [get]
func (h *ReportHandler) SummaryPDF(c *fiber.Ctx) error {
	doc, filename, err := h.svc.SummaryPDF(c.UserContext(), filterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(doc)
}
