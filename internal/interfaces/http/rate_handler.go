package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/dto"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
	"github.com/jhoicas/Contabilidad-api/internal/domain/entity"
)

// Modos de resolución de GET /api/rates/resolve.
const (
	ResolveFallback = "fallback"
	ResolveExact    = "exact"
	ResolveLatest   = "latest"
)

// RateHandler libro de tasas y adquisición desde la fuente externa.
type RateHandler struct {
	sess *session.Session
}

// NewRateHandler construye el handler.
func NewRateHandler(sess *session.Session) *RateHandler {
	return &RateHandler{sess: sess}
}

// List godoc
// @Summary      Listar tasas (más reciente primero)
// @Tags         rates
// @Produce      json
// @Success      200  {array}  entity.ExchangeRate
// @Router       /api/rates [get]
func (h *RateHandler) List(c *fiber.Ctx) error {
	out := h.sess.Book.List()
	if out == nil {
		out = []entity.ExchangeRate{}
	}
	return c.JSON(out)
}

// Current godoc
// @Summary      Tasa vigente (la de hoy o la más reciente)
// @Tags         rates
// @Produce      json
// @Success      200  {object}  entity.ExchangeRate
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/rates/current [get]
func (h *RateHandler) Current(c *fiber.Ctx) error {
	r, ok := h.sess.Book.Current()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay tasas registradas"})
	}
	return c.JSON(r)
}

// Set godoc
// @Summary      Fijar la tasa de un día
// @Tags         rates
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RateRequest  true  "Fecha (vacía = hoy) y tasa"
// @Success      200   {object}  dto.ResolvedRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/rates [post]
func (h *RateHandler) Set(c *fiber.Ctx) error {
	var in dto.RateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.Date == "" {
		in.Date = h.sess.Book.Today()
	}
	if err := h.sess.Book.Update(c.UserContext(), in.Date, in.Rate); err != nil {
		return writeError(c, err)
	}
	rate := in.Rate
	return c.JSON(dto.ResolvedRateResponse{Date: in.Date, Mode: ResolveExact, Rate: &rate, Found: in.Date})
}

// Resolve godoc
// @Summary      Resolver la tasa de una fecha
// @Description  fallback: fecha más reciente <= date. exact: solo esa fecha. latest: registro completo más reciente <= date.
// @Tags         rates
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (vacío = hoy)"
// @Param        mode  query  string  false  "fallback | exact | latest"
// @Success      200   {object}  dto.ResolvedRateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/rates/resolve [get]
func (h *RateHandler) Resolve(c *fiber.Ctx) error {
	date := c.Query("date", h.sess.Book.Today())
	if _, err := entity.ParseDate(date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	mode := c.Query("mode", ResolveFallback)
	resp := dto.ResolvedRateResponse{Date: date, Mode: mode}

	switch mode {
	case ResolveFallback, ResolveLatest:
		if r, ok := h.sess.Book.LatestBefore(date); ok {
			rate := r.Rate
			resp.Rate, resp.Found = &rate, r.Date
		}
	case ResolveExact:
		if rate, ok := h.sess.Book.ResolveExact(date); ok {
			resp.Rate, resp.Found = &rate, date
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "mode debe ser fallback, exact o latest"})
	}
	return c.JSON(resp)
}

// Acquire godoc
// @Summary      Adquirir la tasa desde la fuente externa
// @Description  Retrocede un día por intento hasta el máximo configurado. Un agotamiento no es error HTTP: rate viene null.
// @Tags         rates
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (vacío = hoy)"
// @Success      200   {object}  rates.Result
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/rates/acquire [post]
func (h *RateHandler) Acquire(c *fiber.Ctx) error {
	if h.sess.Acquirer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "RATE_SOURCE_DISABLED", Message: "no hay fuente de tasas configurada",
		})
	}
	date := c.Query("date", h.sess.Book.Today())
	return c.JSON(h.sess.Acquirer.AcquireForDate(c.UserContext(), date))
}
