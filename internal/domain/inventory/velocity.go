package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// ConsumptionVelocity calcula la velocidad diaria de consumo (servicio de dominio).
// Velocidad = Σ|QuantityChange| de eventos consumption con OccurredAt en [since, since+windowDays] / windowDays
//
// Se divide siempre por la ventana completa aunque el historial sea más corto:
// un artículo nuevo sub-estima su velocidad en lugar de sobre-estimarla.
func ConsumptionVelocity(events []entity.UsageEvent, since time.Time, windowDays int) decimal.Decimal {
	if windowDays <= 0 {
		return decimal.Zero
	}
	until := since.AddDate(0, 0, windowDays)
	consumed := int64(0)
	for _, e := range events {
		if !e.IsConsumption() || e.OccurredAt.Before(since) || e.OccurredAt.After(until) {
			continue
		}
		q := int64(e.QuantityChange)
		if q < 0 {
			q = -q
		}
		consumed += q
	}
	if consumed == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(consumed).Div(decimal.NewFromInt(int64(windowDays)))
}
