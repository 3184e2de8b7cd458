package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepository)(nil)

// StockAlertRepository alertas en memoria. El mutex del Store hace atómico el
// "crear si no existe" igual que el índice único parcial en PostgreSQL.
type StockAlertRepository struct {
	s *Store
}

// Create inserta la alerta o devuelve domain.ErrDuplicate si el artículo ya tiene una abierta.
func (r *StockAlertRepository) Create(_ context.Context, alert *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.alerts {
		if a.ItemID == alert.ItemID && !a.Resolved {
			return domain.ErrDuplicate
		}
	}
	c := copyAlert(alert)
	r.s.alerts[c.ID] = c
	return nil
}

// GetByID obtiene una alerta; nil, nil si no existe.
func (r *StockAlertRepository) GetByID(_ context.Context, id string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, nil
	}
	return copyAlert(a), nil
}

// GetOpenByItem devuelve la alerta sin resolver del artículo, si existe.
func (r *StockAlertRepository) GetOpenByItem(_ context.Context, itemID string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.alerts {
		if a.ItemID == itemID && !a.Resolved {
			return copyAlert(a), nil
		}
	}
	return nil, nil
}

// Renotify actualiza la alerta si nadie la notificó desde previousNotifiedAt.
func (r *StockAlertRepository) Renotify(_ context.Context, id string, quantity int, notifiedAt, previousNotifiedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok || a.Resolved || !a.LastNotifiedAt.Equal(previousNotifiedAt) {
		return false, nil
	}
	a.QuantityAtAlert = quantity
	a.NotificationCount++
	a.LastNotifiedAt = notifiedAt
	return true, nil
}

// Resolve marca la alerta como resuelta si sigue abierta.
func (r *StockAlertRepository) Resolve(_ context.Context, id, resolvedBy, notes string, resolvedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok || a.Resolved {
		return false, nil
	}
	at := resolvedAt
	a.Resolved = true
	a.ResolvedAt = &at
	a.ResolvedBy = strings.Clone(resolvedBy)
	a.ResolutionNotes = strings.Clone(notes)
	return true, nil
}

// ListOpen devuelve las alertas abiertas, la más reciente primero.
func (r *StockAlertRepository) ListOpen(_ context.Context) ([]*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.StockAlert, 0)
	for _, a := range r.s.alerts {
		if !a.Resolved {
			list = append(list, copyAlert(a))
		}
	}
	sortNewestFirst(list)
	return list, nil
}

// ListHistory devuelve hasta limit alertas (abiertas y resueltas), la más reciente primero.
func (r *StockAlertRepository) ListHistory(_ context.Context, limit int) ([]*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.StockAlert, 0, len(r.s.alerts))
	for _, a := range r.s.alerts {
		list = append(list, copyAlert(a))
	}
	sortNewestFirst(list)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func sortNewestFirst(list []*entity.StockAlert) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
