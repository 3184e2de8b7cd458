package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-alerts/internal/application/dto"
	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/inventory"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

// ReorderEngine calcula el punto de reorden dinámico (velocidad × lead time × seguridad)
// y genera la lista de sugerencias de reorden. Las sugerencias nunca se persisten:
// se recalculan en cada consulta a partir del catálogo y del libro de uso.
type ReorderEngine struct {
	itemRepo  repository.InventoryItemRepository
	velocity  *VelocityCalculator
	generator ReportGenerator
	log       zerolog.Logger
}

// NewReorderEngine construye el motor de reorden. generator puede ser nil si no se exponen reportes PDF.
func NewReorderEngine(
	itemRepo repository.InventoryItemRepository,
	velocity *VelocityCalculator,
	generator ReportGenerator,
	log zerolog.Logger,
) *ReorderEngine {
	return &ReorderEngine{
		itemRepo:  itemRepo,
		velocity:  velocity,
		generator: generator,
		log:       log.With().Str("component", "reorder_engine").Logger(),
	}
}

// ReorderPoint devuelve ceil(velocidad30 * leadTimeDays * safetyStockMultiplier) del artículo.
func (e *ReorderEngine) ReorderPoint(ctx context.Context, itemID string) (int, error) {
	item, err := e.trackedItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	rp, _, err := e.reorderPointFor(ctx, item)
	return rp, err
}

// SuggestedQuantity devuelve max(0, 2*puntoReorden - stockActual).
func (e *ReorderEngine) SuggestedQuantity(ctx context.Context, itemID string) (int, error) {
	item, err := e.trackedItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	rp, _, err := e.reorderPointFor(ctx, item)
	if err != nil {
		return 0, err
	}
	return inventory.SuggestedQuantity(rp, item.CurrentStock()), nil
}

// Suggestions devuelve los artículos vigilados con stock <= punto de reorden,
// ordenados por cobertura ascendente (stock/puntoReorden): 0% antes que 80%.
func (e *ReorderEngine) Suggestions(ctx context.Context) ([]dto.ReorderSuggestionDTO, error) {
	items, err := e.itemRepo.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listar artículos: %v", domain.ErrStorage, err)
	}

	suggestions := make([]dto.ReorderSuggestionDTO, 0)
	for _, item := range items {
		if !item.TrackingEnabled() {
			continue
		}
		rp, velocity, err := e.reorderPointFor(ctx, item)
		if err != nil {
			// Un artículo con historial ilegible no debe ocultar al resto.
			e.log.Warn().Err(err).Str("item_id", item.ID).Msg("no se pudo calcular el punto de reorden")
			continue
		}
		current := item.CurrentStock()
		if current > rp {
			continue
		}
		suggestions = append(suggestions, dto.ReorderSuggestionDTO{
			ItemID:                   item.ID,
			ItemName:                 item.Name,
			CurrentStock:             current,
			DailyVelocity:            velocity.Round(4),
			ReorderPoint:             rp,
			SuggestedReorderQuantity: inventory.SuggestedQuantity(rp, current),
			CoverageRatio:            inventory.CoverageRatio(current, rp).Round(4),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.CoverageRatio.Equal(b.CoverageRatio) {
			return a.CoverageRatio.LessThan(b.CoverageRatio)
		}
		return a.ItemName < b.ItemName
	})
	return suggestions, nil
}

// RecalculateAll recalcula y persiste el punto de reorden de cada artículo vigilado.
// Los fallos por artículo se registran y se devuelven unidos; el resto continúa.
func (e *ReorderEngine) RecalculateAll(ctx context.Context) ([]dto.ReorderPointDTO, error) {
	items, err := e.itemRepo.ListTracked(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listar artículos: %v", domain.ErrStorage, err)
	}

	results := make([]dto.ReorderPointDTO, 0, len(items))
	var errs []error
	for _, item := range items {
		if !item.TrackingEnabled() {
			continue
		}
		rp, _, err := e.reorderPointFor(ctx, item)
		if err == nil {
			err = e.itemRepo.UpdateReorderPoint(ctx, item.ID, rp)
		}
		if err != nil {
			e.log.Error().Err(err).Str("item_id", item.ID).Msg("recalcular punto de reorden")
			errs = append(errs, fmt.Errorf("artículo %s: %w", item.ID, err))
			continue
		}
		results = append(results, dto.ReorderPointDTO{ItemID: item.ID, ReorderPoint: rp})
	}
	e.log.Info().Int("items", len(results)).Int("errors", len(errs)).Msg("puntos de reorden recalculados")
	return results, errors.Join(errs...)
}

// SuggestionsReport genera el PDF de la lista de sugerencias vigente.
func (e *ReorderEngine) SuggestionsReport(ctx context.Context) ([]byte, error) {
	if e.generator == nil {
		return nil, fmt.Errorf("%w: generador de reportes no configurado", domain.ErrValidation)
	}
	suggestions, err := e.Suggestions(ctx)
	if err != nil {
		return nil, err
	}
	return e.generator.GenerateReorderReport(ctx, suggestions)
}

// Trend expone las velocidades de 30/60/90 días de un artículo vigilado.
func (e *ReorderEngine) Trend(ctx context.Context, itemID string) (*dto.VelocityTrendDTO, error) {
	if _, err := e.trackedItem(ctx, itemID); err != nil {
		return nil, err
	}
	trend, err := e.velocity.Trend(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &dto.VelocityTrendDTO{
		ItemID: itemID,
		Days30: trend.Days30.Round(4),
		Days60: trend.Days60.Round(4),
		Days90: trend.Days90.Round(4),
	}, nil
}

func (e *ReorderEngine) trackedItem(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	item, err := e.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: obtener artículo: %v", domain.ErrStorage, err)
	}
	// Un artículo sin seguimiento es invisible para el motor.
	if item == nil || !item.TrackingEnabled() {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (e *ReorderEngine) reorderPointFor(ctx context.Context, item *entity.InventoryItem) (int, decimal.Decimal, error) {
	velocity, err := e.velocity.Velocity(ctx, item.ID, ReorderWindowDays)
	if err != nil {
		return 0, decimal.Zero, err
	}
	return inventory.ReorderPoint(velocity, item.LeadTimeDays, item.SafetyStockMultiplier), velocity, nil
}
