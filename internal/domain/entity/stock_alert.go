package entity

import "time"

// Tipos de alerta de stock.
const (
	AlertTypeLowStock   = "low_stock"
	AlertTypeOutOfStock = "out_of_stock"
)

// StockAlert representa una alerta de stock bajo o agotado.
// Invariante: como máximo una alerta sin resolver por artículo.
type StockAlert struct {
	ID                  string
	ItemID              string
	ItemName            string
	AlertType           string
	ThresholdAtCreation int
	QuantityAtAlert     int // snapshot de la última evaluación que notificó
	CreatedAt           time.Time
	LastNotifiedAt      time.Time
	NotificationCount   int
	Resolved            bool
	ResolvedAt          *time.Time
	ResolvedBy          string
	ResolutionNotes     string
}
