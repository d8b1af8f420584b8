// Package mail delivers rendered messages over SMTP.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

// Config captures the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// UseTLS upgrades the session with STARTTLS before authenticating.
	UseTLS  bool
	Timeout time.Duration
}

// client is the subset of *smtp.Client used for one delivery.
type client interface {
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

type dialFunc func(ctx context.Context, cfg Config) (client, error)

// Sender opens one SMTP session per message.
type Sender struct {
	cfg  Config
	dial dialFunc
	log  zerolog.Logger
	now  func() time.Time
}

func NewSender(cfg Config, log zerolog.Logger) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Sender{cfg: cfg, dial: dialSMTP, log: log, now: time.Now}
}

func dialSMTP(ctx context.Context, cfg Config) (client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial: %w", err)
	}
	_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return c, nil
}

// Send delivers msg. The session is closed on every path; any failure is
// returned wrapped in domain.ErrDeliveryFailed and is not retried.
func (s *Sender) Send(ctx context.Context, msg ports.EmailMessage) error {
	if err := s.send(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("recipient", msg.To).Str("subject", msg.Subject).Msg("email delivery failed")
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	s.log.Info().Str("recipient", msg.To).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

func (s *Sender) send(ctx context.Context, msg ports.EmailMessage) error {
	c, err := s.dial(ctx, s.cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	if s.cfg.UseTLS {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(s.from()); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write(s.compose(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}
	return c.Quit()
}

func (s *Sender) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

// compose builds a single-part HTML MIME message.
func (s *Sender) compose(msg ports.EmailMessage) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.from())
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")
	return b.Bytes()
}
