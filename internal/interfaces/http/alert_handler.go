package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/internal/application/dto"
)

// sweepTrigger es lo que el handler necesita del planificador.
type sweepTrigger interface {
	TriggerNow(ctx context.Context) (*dto.CheckResultDTO, error)
	Status() dto.SchedulerStatusDTO
}

// AlertHandler maneja las peticiones HTTP de alertas de stock (protegido).
type AlertHandler struct {
	svc       *alerts.Service
	scheduler sweepTrigger
}

// NewAlertHandler construye el handler. scheduler puede ser nil: /check ejecuta el barrido directamente.
func NewAlertHandler(svc *alerts.Service, scheduler sweepTrigger) *AlertHandler {
	return &AlertHandler{svc: svc, scheduler: scheduler}
}

// ListActive godoc
// @Summary      Alertas activas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.StockAlertDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/alerts/active [get]
func (h *AlertHandler) ListActive(c *fiber.Ctx) error {
	list, err := h.svc.GetActiveAlerts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "alerts": list})
}

// ListHistory godoc
// @Summary      Historial de alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de registros (default 50, máx 500)"
// @Success      200  {array}   dto.StockAlertDTO
// @Router       /api/alerts/history [get]
func (h *AlertHandler) ListHistory(c *fiber.Ctx) error {
	list, err := h.svc.GetAlertHistory(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "alerts": list})
}

// Resolve godoc
// @Summary      Resolver alerta
// @Description  Cierra la alerta. No modifica el stock: si sigue bajo, el próximo barrido abre otra.
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                   true   "ID de la alerta"
// @Param        body  body  dto.ResolveAlertRequest  false  "notas"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.ResolveAlertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	if err := h.svc.ResolveAlert(c.UserContext(), utils.CopyString(c.Params("id")), userID, in.Notes); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSettings godoc
// @Summary      Configuración de alertas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertSettingsDTO
// @Router       /api/alerts/settings [get]
func (h *AlertHandler) GetSettings(c *fiber.Ctx) error {
	out, err := h.svc.GetAlertSettings(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateSettings godoc
// @Summary      Actualizar configuración de alertas
// @Description  Solo los campos presentes se modifican. Aplica desde el próximo barrido.
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateAlertSettingsRequest  true  "campos a cambiar"
// @Success      200  {object}  dto.AlertSettingsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts/settings [put]
func (h *AlertHandler) UpdateSettings(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateAlertSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.svc.UpdateAlertSettings(c.UserContext(), in, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Check godoc
// @Summary      Ejecutar barrido ahora
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CheckResultDTO
// @Router       /api/alerts/check [post]
func (h *AlertHandler) Check(c *fiber.Ctx) error {
	var (
		res *dto.CheckResultDTO
		err error
	)
	if h.scheduler != nil {
		res, err = h.scheduler.TriggerNow(c.UserContext())
	} else {
		res, err = h.svc.RunCheck(c.UserContext())
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// SchedulerStatus godoc
// @Summary      Estado del planificador
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SchedulerStatusDTO
// @Router       /api/alerts/scheduler [get]
func (h *AlertHandler) SchedulerStatus(c *fiber.Ctx) error {
	if h.scheduler == nil {
		return c.JSON(dto.SchedulerStatusDTO{})
	}
	return c.JSON(h.scheduler.Status())
}

// Risk godoc
// @Summary      Artículos en riesgo
// @Description  Artículos hoy en o por debajo de su umbral, sin crear alertas.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RiskItemDTO
// @Router       /api/alerts/risk [get]
func (h *AlertHandler) Risk(c *fiber.Ctx) error {
	list, err := h.svc.CurrentRisk(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}
