package notify

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/stock-alerts/pkg/config"
)

// defaultSMTPTimeout plazo de la conversación SMTP cuando ctx no trae deadline.
const defaultSMTPTimeout = 30 * time.Second

// smtpDialer entrega mensajes gomail por SMTP. La conexión hereda el plazo de ctx
// y se cierra si ctx se cancela.
type smtpDialer struct {
	host     string
	port     int
	user     string
	password string
	ssl      bool
	timeout  time.Duration
}

func newSMTPDialer(cfg config.SMTPConfig) *smtpDialer {
	return &smtpDialer{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
		ssl:      cfg.Port == 465,
		timeout:  defaultSMTPTimeout,
	}
}

func (d *smtpDialer) Send(ctx context.Context, m *gomail.Message) error {
	conn, err := d.dial(ctx)
	if err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(d.timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, d.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if !d.ssl {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(d.tlsConfig()); err != nil {
				return err
			}
		}
	}
	if d.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", d.user, d.password, d.host)); err != nil {
				return err
			}
		}
	}

	// gomail resuelve remitente y destinatarios desde las cabeceras del mensaje.
	err = gomail.Send(gomail.SendFunc(func(from string, to []string, msg io.WriterTo) error {
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := msg.WriteTo(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	}), m)
	if err != nil {
		return err
	}
	return c.Quit()
}

func (d *smtpDialer) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(d.host, strconv.Itoa(d.port))
	nd := &net.Dialer{Timeout: d.timeout}
	if d.ssl {
		return (&tls.Dialer{NetDialer: nd, Config: d.tlsConfig()}).DialContext(ctx, "tcp", addr)
	}
	return nd.DialContext(ctx, "tcp", addr)
}

func (d *smtpDialer) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: d.host}
}
