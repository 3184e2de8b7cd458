package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/application/inventory"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// InventoryHandler maneja libro de uso, velocidad y sugerencias de reorden (protegido).
type InventoryHandler struct {
	ledger  *inventory.UsageLedgerUseCase
	reorder *inventory.ReorderEngine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.UsageLedgerUseCase, reorder *inventory.ReorderEngine) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, reorder: reorder}
}

// ApplyUsage godoc
// @Summary      Registrar cambio de stock
// @Description  Aplica quantity_change al stock actual y asienta el evento en el libro de uso.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del artículo"
// @Param        body  body  dto.ApplyUsageRequest  true  "quantity_change (negativo = salida), change_type, notes"
// @Success      201   {object}  dto.UsageEventDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/usage [post]
func (h *InventoryHandler) ApplyUsage(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ApplyUsageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ev, err := h.ledger.Apply(c.UserContext(), inventory.ApplyUsageInput{
		ItemID:         itemID(c),
		QuantityChange: in.QuantityChange,
		ChangeType:     in.ChangeType,
		Notes:          in.Notes,
		CreatedBy:      userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUsageEventDTO(*ev))
}

// RecordCount godoc
// @Summary      Registrar conteo físico
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del artículo"
// @Param        body  body  dto.RecordCountRequest  true  "counted_quantity"
// @Success      201   {object}  dto.UsageEventDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/count [post]
func (h *InventoryHandler) RecordCount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ev, err := h.ledger.RecordCount(c.UserContext(), itemID(c), in.CountedQuantity, in.Notes, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toUsageEventDTO(*ev))
}

// ListUsage godoc
// @Summary      Libro de uso del artículo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del artículo"
// @Param        since  query  string  false  "RFC3339; vacío = todo el historial"
// @Success      200  {array}  dto.UsageEventDTO
// @Router       /api/inventory/items/{id}/usage [get]
func (h *InventoryHandler) ListUsage(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "since debe ser RFC3339"})
		}
		since = &t
	}
	events, err := h.ledger.Query(c.UserContext(), itemID(c), since)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.UsageEventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, toUsageEventDTO(ev))
	}
	return c.JSON(fiber.Map{"total": len(out), "events": out})
}

// Velocity godoc
// @Summary      Velocidad de consumo 30/60/90 días
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del artículo"
// @Success      200  {object}  dto.VelocityTrendDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/velocity [get]
func (h *InventoryHandler) Velocity(c *fiber.Ctx) error {
	out, err := h.reorder.Trend(c.UserContext(), itemID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ReorderSuggestions godoc
// @Summary      Sugerencias de reorden
// @Description  Artículos con stock <= punto de reorden, ordenados por cobertura ascendente.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReorderSuggestionDTO
// @Router       /api/inventory/reorder-suggestions [get]
func (h *InventoryHandler) ReorderSuggestions(c *fiber.Ctx) error {
	list, err := h.reorder.Suggestions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "suggestions": list})
}

// ReorderSuggestionsPDF godoc
// @Summary      Sugerencias de reorden en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Router       /api/inventory/reorder-suggestions/pdf [get]
func (h *InventoryHandler) ReorderSuggestionsPDF(c *fiber.Ctx) error {
	doc, err := h.reorder.SuggestionsReport(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="sugerencias-reorden.pdf"`)
	return c.Send(doc)
}

// RecalculateReorderPoints godoc
// @Summary      Recalcular puntos de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReorderPointDTO
// @Router       /api/inventory/reorder-points/recalculate [post]
func (h *InventoryHandler) RecalculateReorderPoints(c *fiber.Ctx) error {
	points, err := h.reorder.RecalculateAll(c.UserContext())
	body := fiber.Map{"total": len(points), "reorder_points": points}
	if err != nil {
		// Resultado parcial: se devuelve lo recalculado junto con los errores.
		body["errors"] = err.Error()
		return c.Status(fiber.StatusMultiStatus).JSON(body)
	}
	return c.JSON(body)
}

// itemID copia el parámetro de ruta: fiber reutiliza el buffer de la petición.
func itemID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func toUsageEventDTO(ev entity.UsageEvent) dto.UsageEventDTO {
	return dto.UsageEventDTO{
		ID:             ev.ID,
		ItemID:         ev.ItemID,
		QuantityChange: ev.QuantityChange,
		ChangeType:     ev.ChangeType,
		QuantityAfter:  ev.QuantityAfter,
		Notes:          ev.Notes,
		CreatedBy:      ev.CreatedBy,
		OccurredAt:     ev.OccurredAt,
	}
}
