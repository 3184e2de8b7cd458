package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// UsageEventRepository define el puerto del libro de uso.
// No existe borrado ni edición: las correcciones son eventos nuevos.
type UsageEventRepository interface {
	Append(ctx context.Context, event *entity.UsageEvent) error
	// ListByItem devuelve los eventos del artículo ordenados del más antiguo al más reciente.
	// since nil = todo el historial.
	ListByItem(ctx context.Context, itemID string, since *time.Time) ([]entity.UsageEvent, error)
}
