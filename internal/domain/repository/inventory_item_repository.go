package repository

import (
	"context"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// InventoryItemRepository define el puerto de lectura/escritura del catálogo que usa el motor.
// El CRUD completo del catálogo vive en la aplicación anfitriona.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); solo tiene sentido dentro de TxRunner.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// ListTracked devuelve los artículos con stock y umbral configurados.
	ListTracked(ctx context.Context) ([]*entity.InventoryItem, error)
	UpdateStock(ctx context.Context, id string, quantity int) error
	UpdateReorderPoint(ctx context.Context, id string, reorderPoint int) error
}
