package inventory

import (
	"context"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que la escritura del stock y el asiento del libro de uso sean atómicos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		usageRepo repository.UsageEventRepository,
	) error) error
}

// ReportGenerator genera la representación PDF de las sugerencias de reorden.
type ReportGenerator interface {
	GenerateReorderReport(ctx context.Context, suggestions []dto.ReorderSuggestionDTO) ([]byte, error)
}
