package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

// UsageLedgerUseCase registra cambios de stock en el libro de uso de forma transaccional:
// bloquea la fila del artículo (SELECT FOR UPDATE), valida la cantidad resultante,
// actualiza el stock y agrega el evento en la misma transacción.
type UsageLedgerUseCase struct {
	txRunner  TxRunner
	usageRepo repository.UsageEventRepository
	now       func() time.Time
	log       zerolog.Logger
}

// NewUsageLedgerUseCase construye el caso de uso.
func NewUsageLedgerUseCase(txRunner TxRunner, usageRepo repository.UsageEventRepository, log zerolog.Logger) *UsageLedgerUseCase {
	return &UsageLedgerUseCase{
		txRunner:  txRunner,
		usageRepo: usageRepo,
		now:       time.Now,
		log:       log.With().Str("component", "usage_ledger").Logger(),
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UsageLedgerUseCase) WithClock(now func() time.Time) *UsageLedgerUseCase {
	uc.now = now
	return uc
}

// RecordUsageInput entrada para registrar un cambio cuyo resultado ya conoce el llamador.
type RecordUsageInput struct {
	ItemID         string
	QuantityChange int
	ChangeType     string
	QuantityAfter  int
	Notes          string
	CreatedBy      string
}

// ApplyUsageInput entrada para aplicar un cambio; QuantityAfter se calcula con la fila bloqueada.
type ApplyUsageInput struct {
	ItemID         string
	QuantityChange int
	ChangeType     string
	Notes          string
	CreatedBy      string
}

// Record valida que QuantityAfter sea coherente con el stock actual más QuantityChange
// y lo registra junto con la escritura del stock. Protege contra actualizaciones perdidas:
// si otro proceso movió el stock entre la lectura del llamador y esta escritura, se rechaza.
func (uc *UsageLedgerUseCase) Record(ctx context.Context, in RecordUsageInput) (*entity.UsageEvent, error) {
	if err := validateHeader(in.ItemID, in.ChangeType); err != nil {
		return nil, err
	}
	if in.QuantityAfter < 0 {
		return nil, fmt.Errorf("%w: la cantidad resultante no puede ser negativa (%d)", domain.ErrValidation, in.QuantityAfter)
	}

	var recorded *entity.UsageEvent
	err := uc.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, usageRepo repository.UsageEventRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		previous := item.CurrentStock()
		if previous+in.QuantityChange != in.QuantityAfter {
			return fmt.Errorf("%w: cantidad inconsistente (anterior %d %+d != %d)",
				domain.ErrValidation, previous, in.QuantityChange, in.QuantityAfter)
		}
		ev, err := uc.append(ctx, itemRepo, usageRepo, in.ItemID, in.QuantityChange, in.ChangeType, in.QuantityAfter, in.Notes, in.CreatedBy)
		if err != nil {
			return err
		}
		recorded = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// Apply aplica un cambio relativo al stock bloqueado y lo registra.
// Es el camino habitual del anfitrión: no necesita conocer el stock previo.
func (uc *UsageLedgerUseCase) Apply(ctx context.Context, in ApplyUsageInput) (*entity.UsageEvent, error) {
	if err := validateHeader(in.ItemID, in.ChangeType); err != nil {
		return nil, err
	}
	if in.QuantityChange == 0 {
		return nil, fmt.Errorf("%w: el cambio de cantidad no puede ser cero", domain.ErrValidation)
	}

	var recorded *entity.UsageEvent
	err := uc.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, usageRepo repository.UsageEventRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		after := item.CurrentStock() + in.QuantityChange
		if after < 0 {
			return fmt.Errorf("%w: stock insuficiente (actual %d, cambio %d)", domain.ErrValidation, item.CurrentStock(), in.QuantityChange)
		}
		ev, err := uc.append(ctx, itemRepo, usageRepo, in.ItemID, in.QuantityChange, in.ChangeType, after, in.Notes, in.CreatedBy)
		if err != nil {
			return err
		}
		recorded = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// RecordCount registra un conteo físico: el cambio es la diferencia contra el stock actual.
// Un conteo igual al stock también se registra (cambio 0) como evidencia de auditoría.
func (uc *UsageLedgerUseCase) RecordCount(ctx context.Context, itemID string, counted int, notes, createdBy string) (*entity.UsageEvent, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: item_id requerido", domain.ErrValidation)
	}
	if counted < 0 {
		return nil, fmt.Errorf("%w: el conteo no puede ser negativo", domain.ErrValidation)
	}

	var recorded *entity.UsageEvent
	err := uc.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, usageRepo repository.UsageEventRepository) error {
		item, err := itemRepo.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		change := counted - item.CurrentStock()
		ev, err := uc.append(ctx, itemRepo, usageRepo, itemID, change, entity.ChangeTypeInventoryCount, counted, notes, createdBy)
		if err != nil {
			return err
		}
		recorded = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// Query devuelve los eventos del artículo (más antiguo primero), opcionalmente desde una fecha.
func (uc *UsageLedgerUseCase) Query(ctx context.Context, itemID string, since *time.Time) ([]entity.UsageEvent, error) {
	if itemID == "" {
		return nil, fmt.Errorf("%w: item_id requerido", domain.ErrValidation)
	}
	events, err := uc.usageRepo.ListByItem(ctx, itemID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: consultar libro de uso: %v", domain.ErrStorage, err)
	}
	return events, nil
}

// append actualiza el stock y guarda el evento usando los repos de la transacción en curso.
func (uc *UsageLedgerUseCase) append(
	ctx context.Context,
	itemRepo repository.InventoryItemRepository,
	usageRepo repository.UsageEventRepository,
	itemID string, change int, changeType string, after int, notes, createdBy string,
) (*entity.UsageEvent, error) {
	if err := itemRepo.UpdateStock(ctx, itemID, after); err != nil {
		return nil, err
	}
	ev := &entity.UsageEvent{
		ID:             uuid.New().String(),
		ItemID:         itemID,
		QuantityChange: change,
		ChangeType:     changeType,
		QuantityAfter:  after,
		Notes:          notes,
		CreatedBy:      createdBy,
		OccurredAt:     uc.now(),
	}
	if err := usageRepo.Append(ctx, ev); err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("item_id", itemID).
		Str("change_type", changeType).
		Int("quantity_change", change).
		Int("quantity_after", after).
		Msg("evento de uso registrado")
	return ev, nil
}

func validateHeader(itemID, changeType string) error {
	if itemID == "" {
		return fmt.Errorf("%w: item_id requerido", domain.ErrValidation)
	}
	if !entity.ValidChangeType(changeType) {
		return fmt.Errorf("%w: tipo de cambio desconocido %q", domain.ErrValidation, changeType)
	}
	return nil
}
