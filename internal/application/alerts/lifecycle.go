package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
	"github.com/jhoicas/stock-alerts/internal/domain/repository"
)

// Notifier entrega la notificación de una alerta por los canales activos.
// Un error indica que al menos un canal falló; el estado de la alerta ya quedó guardado.
// Process invoca Notify con un contexto sin plazo: la implementación acota sus envíos.
type Notifier interface {
	Notify(ctx context.Context, alert *entity.StockAlert, item *entity.InventoryItem, settings entity.AlertSettings) error
}

// ProcessResult resultado de procesar los artículos clasificados.
type ProcessResult struct {
	Created                int
	Updated                int
	NotificationsRequested int
	NotificationFailures   int
	Errors                 []ItemError
}

// DefaultNotifyWorkers notificaciones simultáneas por barrido.
const DefaultNotifyWorkers = 16

// LifecycleManager controla el ciclo abierta → resuelta de las alertas:
// una alerta abierta por artículo, re-notificación solo tras el cooldown.
type LifecycleManager struct {
	alertRepo repository.StockAlertRepository
	notifier  Notifier
	workers   int
	now       func() time.Time
	log       zerolog.Logger
}

// notice notificación pendiente; alert es una copia tomada al guardar el estado.
type notice struct {
	alert entity.StockAlert
	item  *entity.InventoryItem
}

// NewLifecycleManager construye el gestor.
func NewLifecycleManager(alertRepo repository.StockAlertRepository, notifier Notifier, log zerolog.Logger) *LifecycleManager {
	return &LifecycleManager{
		alertRepo: alertRepo,
		notifier:  notifier,
		workers:   DefaultNotifyWorkers,
		now:       time.Now,
		log:       log.With().Str("component", "alert_lifecycle").Logger(),
	}
}

// WithClock reemplaza el reloj (tests).
func (m *LifecycleManager) WithClock(now func() time.Time) *LifecycleManager {
	m.now = now
	return m
}

// WithNotifyWorkers fija cuántas notificaciones se envían a la vez. n < 1 se ignora.
func (m *LifecycleManager) WithNotifyWorkers(n int) *LifecycleManager {
	if n >= 1 {
		m.workers = n
	}
	return m
}

// Process crea, re-notifica o ignora la alerta de cada artículo clasificado.
// El fallo de un artículo se reporta en Errors y no detiene al resto.
//
// Primero se guarda el estado de todas las alertas con ctx; después se notifica
// en paralelo sobre un contexto que no hereda la cancelación ni el plazo de ctx.
func (m *LifecycleManager) Process(ctx context.Context, items []ClassifiedItem, settings entity.AlertSettings) *ProcessResult {
	res := &ProcessResult{}
	var pending []notice
	for _, ci := range items {
		n, err := m.processItem(ctx, ci, settings, res)
		if err != nil {
			m.log.Error().Err(err).Str("item_id", ci.Item.ID).Msg("procesar alerta")
			res.Errors = append(res.Errors, ItemError{ItemID: ci.Item.ID, Err: err})
			continue
		}
		if n != nil {
			pending = append(pending, *n)
		}
	}
	m.dispatch(context.WithoutCancel(ctx), pending, settings, res)
	return res
}

// processItem guarda el estado de la alerta del artículo y devuelve la
// notificación pendiente, o nil si no corresponde avisar.
func (m *LifecycleManager) processItem(ctx context.Context, ci ClassifiedItem, settings entity.AlertSettings, res *ProcessResult) (*notice, error) {
	item := ci.Item
	now := m.now()

	open, err := m.alertRepo.GetOpenByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: buscar alerta abierta: %v", domain.ErrStorage, err)
	}

	if open == nil {
		alert := &entity.StockAlert{
			ID:                  uuid.New().String(),
			ItemID:              item.ID,
			ItemName:            item.Name,
			AlertType:           ci.AlertType,
			ThresholdAtCreation: item.Threshold(),
			QuantityAtAlert:     item.CurrentStock(),
			CreatedAt:           now,
			LastNotifiedAt:      now,
			NotificationCount:   1,
		}
		err := m.alertRepo.Create(ctx, alert)
		switch {
		case err == nil:
			res.Created++
			m.log.Info().
				Str("item_id", item.ID).
				Str("alert_type", alert.AlertType).
				Int("quantity", alert.QuantityAtAlert).
				Msg("alerta de stock creada")
			return &notice{alert: *alert, item: item}, nil
		case errors.Is(err, domain.ErrDuplicate):
			// Otro barrido creó la alerta entre la lectura y la inserción.
			open, err = m.alertRepo.GetOpenByItem(ctx, item.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: releer alerta abierta: %v", domain.ErrStorage, err)
			}
			if open == nil {
				return nil, fmt.Errorf("%w: alerta concurrente no encontrada", domain.ErrStorage)
			}
		default:
			return nil, fmt.Errorf("%w: crear alerta: %v", domain.ErrStorage, err)
		}
	}

	if now.Sub(open.LastNotifiedAt) < settings.Cooldown() {
		return nil, nil
	}

	quantity := item.CurrentStock()
	ok, err := m.alertRepo.Renotify(ctx, open.ID, quantity, now, open.LastNotifiedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: actualizar alerta: %v", domain.ErrStorage, err)
	}
	if !ok {
		return nil, nil
	}
	open.QuantityAtAlert = quantity
	open.NotificationCount++
	open.LastNotifiedAt = now
	res.Updated++
	m.log.Info().
		Str("item_id", item.ID).
		Int("notification_count", open.NotificationCount).
		Msg("alerta de stock re-notificada")
	return &notice{alert: *open, item: item}, nil
}

// dispatch envía las notificaciones pendientes con a lo sumo m.workers a la vez.
// Un fallo de transporte no revierte la alerta: el registro refleja
// "se intentó notificar", no "se entregó".
func (m *LifecycleManager) dispatch(ctx context.Context, pending []notice, settings entity.AlertSettings, res *ProcessResult) {
	res.NotificationsRequested += len(pending)
	if m.notifier == nil || len(pending) == 0 {
		return
	}

	var (
		g        errgroup.Group
		failures atomic.Int64
	)
	g.SetLimit(m.workers)
	for _, n := range pending {
		g.Go(func() error {
			if err := m.notifier.Notify(ctx, &n.alert, n.item, settings); err != nil {
				failures.Add(1)
				m.log.Warn().Err(err).Str("alert_id", n.alert.ID).Msg("notificación fallida")
			}
			return nil
		})
	}
	_ = g.Wait()
	res.NotificationFailures += int(failures.Load())
}

// Resolve cierra una alerta abierta. No toca el stock: si la condición persiste,
// el siguiente barrido abrirá una alerta nueva.
func (m *LifecycleManager) Resolve(ctx context.Context, alertID, resolvedBy, notes string) error {
	if resolvedBy == "" {
		return fmt.Errorf("%w: resolved_by requerido", domain.ErrValidation)
	}
	alert, err := m.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return fmt.Errorf("%w: obtener alerta: %v", domain.ErrStorage, err)
	}
	if alert == nil {
		return domain.ErrNotFound
	}
	if alert.Resolved {
		return domain.ErrAlreadyResolved
	}
	ok, err := m.alertRepo.Resolve(ctx, alertID, resolvedBy, notes, m.now())
	if err != nil {
		return fmt.Errorf("%w: resolver alerta: %v", domain.ErrStorage, err)
	}
	if !ok {
		return domain.ErrAlreadyResolved
	}
	m.log.Info().Str("alert_id", alertID).Str("resolved_by", resolvedBy).Msg("alerta resuelta")
	return nil
}
