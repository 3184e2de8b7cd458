package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/stock-alerts/internal/domain"
	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// DefaultNotifyTimeout tiempo máximo por canal si no se configura otro.
const DefaultNotifyTimeout = 15 * time.Second

// Channel capacidad de envío de un canal de notificación (email, SMS, ...).
// El motor entrega el contenido ya renderizado.
type Channel interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// Dispatcher implementa Notifier: renderiza el mensaje y lo envía en paralelo
// por cada canal activo en la configuración, cada uno con su propio timeout.
type Dispatcher struct {
	channels map[entity.NotificationChannel]Channel
	timeout  time.Duration
	printer  *message.Printer
	log      zerolog.Logger
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher construye el despachador. Los canales sin implementación registrada se omiten.
func NewDispatcher(channels map[entity.NotificationChannel]Channel, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	if channels == nil {
		channels = map[entity.NotificationChannel]Channel{}
	}
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		printer:  message.NewPrinter(language.Spanish),
		log:      log.With().Str("component", "notifier").Logger(),
	}
}

// Notify envía la alerta por todos los canales activos. El fallo de un canal no impide
// intentar los demás; los errores se devuelven unidos y envueltos en domain.ErrTransport.
func (d *Dispatcher) Notify(ctx context.Context, alert *entity.StockAlert, item *entity.InventoryItem, settings entity.AlertSettings) error {
	targets := settings.Targets()
	if len(targets) == 0 {
		d.log.Debug().Str("alert_id", alert.ID).Msg("sin canales activos, notificación omitida")
		return nil
	}
	subject, body := d.Render(alert, item)

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(len(targets))
	for name, recipients := range targets {
		ch, ok := d.channels[name]
		if !ok {
			d.log.Warn().Str("channel", string(name)).Msg("canal activo sin configuración de transporte")
			continue
		}
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			if err := ch.Send(sendCtx, recipients, subject, body); err != nil {
				d.log.Error().Err(err).Str("channel", string(name)).Str("alert_id", alert.ID).Msg("envío fallido")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%w: %s: %v", domain.ErrTransport, name, err))
				mu.Unlock()
				return nil
			}
			d.log.Info().Str("channel", string(name)).Int("recipients", len(recipients)).Str("alert_id", alert.ID).Msg("notificación enviada")
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Render arma asunto y cuerpo del mensaje.
func (d *Dispatcher) Render(alert *entity.StockAlert, item *entity.InventoryItem) (string, string) {
	name := alert.ItemName
	if item != nil && item.Name != "" {
		name = item.Name
	}

	subject := "[Inventario] Stock bajo: " + name
	status := "Stock bajo"
	if alert.QuantityAtAlert == 0 {
		subject = "[Inventario] Agotado: " + name
		status = "Agotado"
	}

	var b strings.Builder
	b.WriteString(d.printer.Sprintf("%s: %s\n", status, name))
	b.WriteString(d.printer.Sprintf("Cantidad actual: %d\n", alert.QuantityAtAlert))
	b.WriteString(d.printer.Sprintf("Umbral configurado: %d\n", alert.ThresholdAtCreation))
	if alert.NotificationCount > 1 {
		b.WriteString(d.printer.Sprintf("Aviso n.º %d (alerta abierta desde %s)\n",
			alert.NotificationCount, alert.CreatedAt.Format("02/01/2006 15:04")))
	}
	b.WriteString("Revise el inventario y registre la reposición o resuelva la alerta.")
	return subject, b.String()
}
