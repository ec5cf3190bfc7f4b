package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

type SMTPConfig struct {
	Addr     string
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type SMTPNotifier struct {
	cfg  SMTPConfig
	host string
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: smtp address %q: %v", domain.ErrConfiguration, cfg.Addr, err)
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("%w: smtp sender address is required", domain.ErrConfiguration)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &SMTPNotifier{cfg: cfg, host: host}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, event domain.AlertEvent, to string) error {
	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", n.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to %s: %w", to, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(BuildMessage(n.cfg.From, to, event)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return c.Quit()
}

var subjects = map[domain.AlertKind]string{
	domain.AlertLowStock:     "Dental Supply Alert: Low Stock",
	domain.AlertExpiringSoon: "Dental Supply Alert: Item Expiring Soon",
	domain.AlertExpired:      "Dental Supply Alert: Item Expired",
}

// BuildMessage renders an alert as a plain-text RFC 5322 message.
func BuildMessage(from, to string, event domain.AlertEvent) []byte {
	subject, ok := subjects[event.Kind]
	if !ok {
		subject = "Dental Supply Alert"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", event.GeneratedAt.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	body := []string{
		"Hello,",
		"",
		"This is an automated alert from your Dental Supply Tracker.",
		"",
		event.Message + ".",
		"",
		"Please review this item and take appropriate action.",
		"",
		"Regards,",
		"Dental Supply Tracker",
	}
	b.WriteString(strings.Join(body, "\r\n"))
	b.WriteString("\r\n")

	return b.Bytes()
}
