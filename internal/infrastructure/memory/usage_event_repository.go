package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.UsageEventRepository = (*UsageEventRepository)(nil)

// UsageEventRepository libro de uso en memoria (solo agrega).
type UsageEventRepository struct {
	s *Store
}

// Append agrega un evento al final del libro.
func (r *UsageEventRepository) Append(_ context.Context, event *entity.UsageEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, copyEvent(*event))
	return nil
}

// ListByItem devuelve los eventos del artículo del más antiguo al más reciente.
func (r *UsageEventRepository) ListByItem(_ context.Context, itemID string, since *time.Time) ([]entity.UsageEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []entity.UsageEvent
	for _, e := range r.s.events {
		if e.ItemID != itemID {
			continue
		}
		if since != nil && e.OccurredAt.Before(*since) {
			continue
		}
		list = append(list, e)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].OccurredAt.Before(list[j].OccurredAt) })
	return list, nil
}
