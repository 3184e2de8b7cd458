package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/domain"
)

// InventoryItem representa un artículo del catálogo tal como lo ve el motor de alertas.
// StockQuantity y LowStockThreshold son opcionales: sin ambos el artículo no se vigila.
type InventoryItem struct {
	ID                    string
	Name                  string
	StockQuantity         *int
	LowStockThreshold     *int
	LeadTimeDays          int             // días de reposición, >= 1
	SafetyStockMultiplier decimal.Decimal // colchón sobre la demanda del lead time, >= 1.0
	ReorderPoint          *int            // último punto de reorden persistido por RecalculateAll
	UpdatedAt             time.Time
}

// TrackingEnabled indica si el artículo tiene stock y umbral configurados.
func (i *InventoryItem) TrackingEnabled() bool {
	return i != nil && i.StockQuantity != nil && i.LowStockThreshold != nil
}

// CurrentStock devuelve el stock actual o 0 si no está configurado.
func (i *InventoryItem) CurrentStock() int {
	if i == nil || i.StockQuantity == nil {
		return 0
	}
	return *i.StockQuantity
}

// Threshold devuelve el umbral estático o 0 si no está configurado.
func (i *InventoryItem) Threshold() int {
	if i == nil || i.LowStockThreshold == nil {
		return 0
	}
	return *i.LowStockThreshold
}

// Validate revisa los datos que el catálogo exige para calcular el punto de reorden.
func (i *InventoryItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: id requerido", domain.ErrValidation)
	}
	if i.LeadTimeDays < 1 {
		return fmt.Errorf("%w: lead_time_days debe ser >= 1", domain.ErrValidation)
	}
	if i.SafetyStockMultiplier.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: safety_stock_multiplier debe ser >= 1.0", domain.ErrValidation)
	}
	return nil
}
