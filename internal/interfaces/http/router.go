package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Contabilidad-api/internal/application/report"
	"github.com/jhoicas/Contabilidad-api/internal/application/session"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Session   *session.Session
	Reports   *report.Service
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Sesión: abrir exige token; cerrar solo el dueño de la sesión activa
	sessionHandler := NewSessionHandler(deps.Session)
	owner := RequireSessionOwner(deps.Session)
	api.Post("/session", AuthMiddleware(deps.JWTSecret), sessionHandler.Open)
	api.Delete("/session", OptionalAuthMiddleware(deps.JWTSecret), owner, sessionHandler.Close)
	api.Get("/status", sessionHandler.Status)

	// Datos del alcance activo
	scoped := api.Group("/", OptionalAuthMiddleware(deps.JWTSecret), owner)
	scoped.Post("/session/reload", sessionHandler.Reload)
	scoped.Get("/history", sessionHandler.History)

	transactions := scoped.Group("/transactions")
	transactionHandler := NewTransactionHandler(deps.Session.Ledger.Transactions, deps.Reports)
	transactions.Get("/", transactionHandler.List)
	transactions.Post("/", transactionHandler.Create)
	transactions.Get("/:id", transactionHandler.GetByID)
	transactions.Put("/:id", transactionHandler.Update)
	transactions.Delete("/:id", transactionHandler.Delete)

	rates := scoped.Group("/rates")
	rateHandler := NewRateHandler(deps.Session)
	rates.Get("/", rateHandler.List)
	rates.Post("/", rateHandler.Set)
	rates.Get("/current", rateHandler.Current)
	rates.Get("/resolve", rateHandler.Resolve)
	rates.Post("/acquire", rateHandler.Acquire)

	ingredients := scoped.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.Session)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Post("/", ingredientHandler.Create)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Put("/:id", ingredientHandler.Update)
	ingredients.Delete("/:id", ingredientHandler.Delete)

	recipes := scoped.Group("/recipes")
	recipeHandler := NewRecipeHandler(deps.Session)
	recipes.Get("/", recipeHandler.List)
	recipes.Post("/", recipeHandler.Create)
	recipes.Get("/:id", recipeHandler.GetByID)
	recipes.Put("/:id", recipeHandler.Update)
	recipes.Delete("/:id", recipeHandler.Delete)

	production := scoped.Group("/production")
	productionHandler := NewProductionHandler(deps.Session)
	production.Get("/", productionHandler.List)
	production.Post("/", productionHandler.Create)
	production.Get("/:id", productionHandler.GetByID)
	production.Put("/:id", productionHandler.Update)
	production.Delete("/:id", productionHandler.Delete)

	reports := scoped.Group("/reports")
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/summary.pdf", reportHandler.SummaryPDF)
}
