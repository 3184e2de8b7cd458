package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// StockAlertRepository define el puerto de persistencia de alertas de stock.
type StockAlertRepository interface {
	// Create inserta una alerta abierta. Si ya existe una alerta sin resolver para el artículo
	// devuelve domain.ErrDuplicate (índice único parcial o equivalente).
	Create(ctx context.Context, alert *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	GetOpenByItem(ctx context.Context, itemID string) (*entity.StockAlert, error)
	// Renotify actualiza cantidad, contador y fecha de notificación solo si la alerta sigue abierta
	// y last_notified_at no cambió desde previousNotifiedAt. Devuelve false si otro barrido ganó.
	Renotify(ctx context.Context, id string, quantity int, notifiedAt, previousNotifiedAt time.Time) (bool, error)
	// Resolve marca la alerta como resuelta si sigue abierta. Devuelve false si ya estaba resuelta.
	Resolve(ctx context.Context, id, resolvedBy, notes string, resolvedAt time.Time) (bool, error)
	ListOpen(ctx context.Context) ([]*entity.StockAlert, error)
	ListHistory(ctx context.Context, limit int) ([]*entity.StockAlert, error)
}
