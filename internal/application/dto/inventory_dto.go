package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyUsageRequest body para POST /api/inventory/items/:id/usage.
type ApplyUsageRequest struct {
	QuantityChange int    `json:"quantity_change"`
	ChangeType     string `json:"change_type"`
	Notes          string `json:"notes,omitempty"`
}

// RecordCountRequest body para POST /api/inventory/items/:id/count.
type RecordCountRequest struct {
	CountedQuantity int    `json:"counted_quantity"`
	Notes           string `json:"notes,omitempty"`
}

// UsageEventDTO fila del libro de uso.
type UsageEventDTO struct {
	ID             string    `json:"id"`
	ItemID         string    `json:"item_id"`
	QuantityChange int       `json:"quantity_change"`
	ChangeType     string    `json:"change_type"`
	QuantityAfter  int       `json:"quantity_after"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      string    `json:"created_by,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// VelocityTrendDTO velocidades de consumo para 30/60/90 días (solo visualización).
type VelocityTrendDTO struct {
	ItemID string          `json:"item_id"`
	Days30 decimal.Decimal `json:"days_30"` // base del punto de reorden
	Days60 decimal.Decimal `json:"days_60"`
	Days90 decimal.Decimal `json:"days_90"`
}

// ReorderSuggestionDTO sugerencia de reorden para un artículo bajo su punto de reorden.
type ReorderSuggestionDTO struct {
	ItemID                   string          `json:"item_id"`
	ItemName                 string          `json:"item_name"`
	CurrentStock             int             `json:"current_stock"`
	DailyVelocity            decimal.Decimal `json:"daily_velocity"`
	ReorderPoint             int             `json:"reorder_point"`
	SuggestedReorderQuantity int             `json:"suggested_reorder_quantity"` // max(0, 2*RP - stock)
	CoverageRatio            decimal.Decimal `json:"coverage_ratio"`             // stock / RP, 0 = más urgente
}

// ReorderPointDTO resultado de recalcular el punto de reorden de un artículo.
type ReorderPointDTO struct {
	ItemID       string `json:"item_id"`
	ReorderPoint int    `json:"reorder_point"`
}
