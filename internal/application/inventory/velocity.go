package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/inventory"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

// Ventanas de velocidad. Solo la de 30 días alimenta el punto de reorden;
// 60 y 90 existen para mostrar tendencia.
const (
	ReorderWindowDays = 30
	TrendWindow60     = 60
	TrendWindow90     = 90
)

// VelocityTrend velocidades de consumo por ventana.
type VelocityTrend struct {
	Days30 decimal.Decimal
	Days60 decimal.Decimal
	Days90 decimal.Decimal
}

// VelocityCalculator calcula la velocidad diaria de consumo a partir del libro de uso.
type VelocityCalculator struct {
	usageRepo repository.UsageEventRepository
	now       func() time.Time
}

// NewVelocityCalculator construye el calculador.
func NewVelocityCalculator(usageRepo repository.UsageEventRepository) *VelocityCalculator {
	return &VelocityCalculator{usageRepo: usageRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (c *VelocityCalculator) WithClock(now func() time.Time) *VelocityCalculator {
	c.now = now
	return c
}

// Velocity devuelve las unidades consumidas por día en los últimos windowDays.
// Sin eventos de consumo devuelve 0: un artículo inactivo no tiene urgencia de reorden.
func (c *VelocityCalculator) Velocity(ctx context.Context, itemID string, windowDays int) (decimal.Decimal, error) {
	if windowDays <= 0 {
		return decimal.Zero, fmt.Errorf("%w: la ventana debe ser positiva", domain.ErrValidation)
	}
	since := c.now().AddDate(0, 0, -windowDays)
	events, err := c.usageRepo.ListByItem(ctx, itemID, &since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: leer libro de uso: %v", domain.ErrStorage, err)
	}
	return inventory.ConsumptionVelocity(events, since, windowDays), nil
}

// Trend calcula las tres ventanas con una sola lectura del libro (la de 90 días).
func (c *VelocityCalculator) Trend(ctx context.Context, itemID string) (VelocityTrend, error) {
	now := c.now()
	since90 := now.AddDate(0, 0, -TrendWindow90)
	events, err := c.usageRepo.ListByItem(ctx, itemID, &since90)
	if err != nil {
		return VelocityTrend{}, fmt.Errorf("%w: leer libro de uso: %v", domain.ErrStorage, err)
	}
	return VelocityTrend{
		Days30: inventory.ConsumptionVelocity(events, now.AddDate(0, 0, -ReorderWindowDays), ReorderWindowDays),
		Days60: inventory.ConsumptionVelocity(events, now.AddDate(0, 0, -TrendWindow60), TrendWindow60),
		Days90: inventory.ConsumptionVelocity(events, since90, TrendWindow90),
	}, nil
}
