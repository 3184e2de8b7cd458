// Package notify implementa los transportes de notificación (email y SMS).
package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

var _ alerts.Channel = (*EmailChannel)(nil)

// mailSender entrega un mensaje ya armado respetando el plazo de ctx.
type mailSender interface {
	Send(ctx context.Context, m *gomail.Message) error
}

// EmailChannel envía las alertas por SMTP.
type EmailChannel struct {
	sender mailSender
	from   string
}

// NewEmailChannel construye el canal con el servidor SMTP configurado.
func NewEmailChannel(cfg config.SMTPConfig) *EmailChannel {
	return &EmailChannel{
		sender: newSMTPDialer(cfg),
		from:   cfg.From,
	}
}

// Send envía un único correo a todos los destinatarios.
func (c *EmailChannel) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	// SetHeader codifica los valores en sitio.
	m.SetHeader("To", append([]string(nil), recipients...)...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := c.sender.Send(ctx, m); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp: %w: %v", ctxErr, err)
		}
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}
