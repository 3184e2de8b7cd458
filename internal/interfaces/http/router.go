package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-alerts/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AlertHandler     *AlertHandler
	InventoryHandler *InventoryHandler
	JWTSecret        string
	JWTIssuer        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	operators := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Alertas
	al := api.Group("/alerts")
	h := deps.AlertHandler
	al.Get("/active", h.ListActive)
	al.Get("/history", h.ListHistory)
	al.Get("/risk", h.Risk)
	al.Get("/settings", h.GetSettings)
	al.Put("/settings", adminOnly, h.UpdateSettings)
	al.Get("/scheduler", h.SchedulerStatus)
	al.Post("/check", operators, h.Check)
	al.Post("/:id/resolve", operators, h.Resolve)

	// Inventario: libro de uso y reorden
	inv := api.Group("/inventory")
	ih := deps.InventoryHandler
	inv.Get("/reorder-suggestions", ih.ReorderSuggestions)
	inv.Get("/reorder-suggestions/pdf", ih.ReorderSuggestionsPDF)
	inv.Post("/reorder-points/recalculate", operators, ih.RecalculateReorderPoints)
	inv.Get("/items/:id/velocity", ih.Velocity)
	inv.Get("/items/:id/usage", ih.ListUsage)
	inv.Post("/items/:id/usage", operators, ih.ApplyUsage)
	inv.Post("/items/:id/count", operators, ih.RecordCount)
}
