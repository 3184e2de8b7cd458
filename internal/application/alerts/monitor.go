package alerts

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

// ClassifiedItem artículo en o por debajo de su umbral estático con su severidad.
type ClassifiedItem struct {
	Item      *entity.InventoryItem
	AlertType string // low_stock | out_of_stock
}

// ItemError fallo aislado de un artículo; no aborta el lote.
type ItemError struct {
	ItemID string
	Err    error
}

// SweepResult resultado de un barrido del monitor.
type SweepResult struct {
	Checked        int
	BelowThreshold []ClassifiedItem
	Errors         []ItemError
}

// Monitor compara el stock de cada artículo vigilado contra su umbral estático.
// Es solo lectura: la creación de alertas le corresponde a LifecycleManager.
type Monitor struct {
	itemRepo repository.InventoryItemRepository
}

// NewMonitor construye el monitor.
func NewMonitor(itemRepo repository.InventoryItemRepository) *Monitor {
	return &Monitor{itemRepo: itemRepo}
}

// Sweep clasifica los artículos vigilados. Con settings.Enabled == false no evalúa nada.
func (m *Monitor) Sweep(ctx context.Context, settings entity.AlertSettings) (*SweepResult, error) {
	if !settings.Enabled {
		return &SweepResult{}, nil
	}
	return m.classify(ctx)
}

// CurrentRisk clasifica sin mirar el interruptor global (vista de riesgo del dashboard).
func (m *Monitor) CurrentRisk(ctx context.Context) (*SweepResult, error) {
	return m.classify(ctx)
}

func (m *Monitor) classify(ctx context.Context) (*SweepResult, error) {
	items, err := m.itemRepo.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listar artículos vigilados: %v", domain.ErrStorage, err)
	}

	res := &SweepResult{BelowThreshold: make([]ClassifiedItem, 0)}
	for _, item := range items {
		if !item.TrackingEnabled() {
			continue
		}
		res.Checked++
		alertType, below, err := Classify(item)
		if err != nil {
			res.Errors = append(res.Errors, ItemError{ItemID: item.ID, Err: err})
			continue
		}
		if below {
			res.BelowThreshold = append(res.BelowThreshold, ClassifiedItem{Item: item, AlertType: alertType})
		}
	}
	return res, nil
}

// Classify evalúa un artículo: stock <= umbral está por debajo; stock 0 es out_of_stock.
func Classify(item *entity.InventoryItem) (string, bool, error) {
	stock, threshold := item.CurrentStock(), item.Threshold()
	if stock < 0 || threshold < 0 {
		return "", false, fmt.Errorf("%w: stock %d / umbral %d negativos", domain.ErrValidation, stock, threshold)
	}
	if stock > threshold {
		return "", false, nil
	}
	if stock == 0 {
		return entity.AlertTypeOutOfStock, true, nil
	}
	return entity.AlertTypeLowStock, true, nil
}
