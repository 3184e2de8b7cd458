package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jhoicas/stock-alerts/internal/application/alerts"
	"github.com/jhoicas/stock-alerts/pkg/config"
)

var _ alerts.Channel = (*SMSChannel)(nil)

// SMSChannel envía las alertas a una pasarela HTTP de SMS (POST {base}/messages).
type SMSChannel struct {
	httpClient *resty.Client
	sender     string
}

// NewSMSChannel construye el canal con la pasarela configurada.
func NewSMSChannel(cfg config.SMSConfig) *SMSChannel {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	return &SMSChannel{httpClient: client, sender: cfg.Sender}
}

type smsRequest struct {
	To   []string `json:"to"`
	From string   `json:"from,omitempty"`
	Body string   `json:"body"`
}

type smsResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type smsAPIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Send envía un SMS a todos los destinatarios. El SMS no lleva asunto separado:
// se antepone al cuerpo.
func (c *SMSChannel) Send(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return nil
	}
	text := body
	if subject != "" {
		text = subject + "\n" + body
	}

	result := new(smsResponse)
	apiErr := new(smsAPIError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(smsRequest{To: recipients, From: c.sender, Body: text}).
		SetResult(result).
		SetError(apiErr).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("sms: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		msg := apiErr.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return fmt.Errorf("sms api error: status=%d, message=%s", resp.StatusCode(), msg)
	}
	return nil
}
