package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepository)(nil)

// InventoryItemRepository artículos en memoria.
type InventoryItemRepository struct {
	s *Store
}

// Create guarda un artículo nuevo.
func (r *InventoryItemRepository) Create(_ context.Context, item *entity.InventoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; ok {
		return domain.ErrDuplicate
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	c := copyItem(item)
	r.s.items[c.ID] = c
	return nil
}

// GetByID obtiene un artículo; nil, nil si no existe.
func (r *InventoryItemRepository) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

// GetForUpdate equivale a GetByID: el bloqueo lo da TxRunner.
func (r *InventoryItemRepository) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

// ListTracked devuelve los artículos con stock y umbral configurados, ordenados por nombre.
func (r *InventoryItemRepository) ListTracked(_ context.Context) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.InventoryItem, 0, len(r.s.items))
	for _, item := range r.s.items {
		if item.TrackingEnabled() {
			list = append(list, copyItem(item))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// UpdateStock fija la cantidad en stock.
func (r *InventoryItemRepository) UpdateStock(_ context.Context, id string, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	q := quantity
	item.StockQuantity = &q
	item.UpdatedAt = time.Now()
	return nil
}

// UpdateReorderPoint guarda el punto de reorden calculado.
func (r *InventoryItemRepository) UpdateReorderPoint(_ context.Context, id string, reorderPoint int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item, ok := r.s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	rp := reorderPoint
	item.ReorderPoint = &rp
	return nil
}
