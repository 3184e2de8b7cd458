package memory

import (
	"context"

	"github.com/jhoicas/stock-alerts/internal/application/inventory"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones y, si fn falla, deshace solo lo que fn escribió.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn con acceso exclusivo; si devuelve error deshace los cambios.
func (r *TxRunner) Run(_ context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	usageRepo repository.UsageEventRepository,
) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	tx := &txLog{before: make(map[string]*entity.InventoryItem)}
	items := &txItemRepository{InventoryItemRepository: r.s.Items(), tx: tx}
	usage := &txUsageRepository{UsageEventRepository: r.s.UsageEvents(), tx: tx}

	if err := fn(items, usage); err != nil {
		tx.rollback(r.s)
		return err
	}
	return nil
}

// txLog guarda el estado previo de cada artículo tocado y los eventos agregados.
type txLog struct {
	before   map[string]*entity.InventoryItem // nil = no existía
	appended map[string]struct{}
}

func (t *txLog) touch(s *Store, id string) {
	if _, ok := t.before[id]; ok {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, ok := s.items[id]; ok {
		t.before[id] = copyItem(item)
	} else {
		t.before[id] = nil
	}
}

func (t *txLog) rollback(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range t.before {
		if item == nil {
			delete(s.items, id)
			continue
		}
		s.items[id] = item
	}
	if len(t.appended) == 0 {
		return
	}
	kept := s.events[:0]
	for _, e := range s.events {
		if _, ok := t.appended[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	s.events = kept
}

type txItemRepository struct {
	*InventoryItemRepository
	tx *txLog
}

func (r *txItemRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	r.tx.touch(r.s, item.ID)
	return r.InventoryItemRepository.Create(ctx, item)
}

func (r *txItemRepository) UpdateStock(ctx context.Context, id string, quantity int) error {
	r.tx.touch(r.s, id)
	return r.InventoryItemRepository.UpdateStock(ctx, id, quantity)
}

func (r *txItemRepository) UpdateReorderPoint(ctx context.Context, id string, reorderPoint int) error {
	r.tx.touch(r.s, id)
	return r.InventoryItemRepository.UpdateReorderPoint(ctx, id, reorderPoint)
}

type txUsageRepository struct {
	*UsageEventRepository
	tx *txLog
}

func (r *txUsageRepository) Append(ctx context.Context, event *entity.UsageEvent) error {
	if err := r.UsageEventRepository.Append(ctx, event); err != nil {
		return err
	}
	if r.tx.appended == nil {
		r.tx.appended = make(map[string]struct{})
	}
	r.tx.appended[event.ID] = struct{}{}
	return nil
}
