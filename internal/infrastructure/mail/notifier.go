package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const implicitTLSPort = 465

// Notifier dispatches the digest as an HTML email over SMTP.
type Notifier struct {
	cfg    config.MailConfig
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the outbound mail channel configuration.
func NewNotifier(cfg config.MailConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{cfg: cfg, logger: logger, now: time.Now}
}

// SendDigest renders the summaries and sends them to the configured
// recipient. Port 465 uses implicit TLS; anything else goes through
// STARTTLS via the standard SMTP flow.
func (n *Notifier) SendDigest(_ context.Context, summaries []domain.Summary) error {
	if n.cfg.SMTPHost == "" || n.cfg.From == "" || n.cfg.To == "" {
		return domain.Classify(domain.ErrKindMailDispatch, fmt.Errorf("mail notifier misconfigured"))
	}

	body, err := BuildDigest(summaries)
	if err != nil {
		return domain.Classify(domain.ErrKindMailDispatch, err)
	}

	message := n.buildMessage(body)
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)

	if n.cfg.SMTPPort == implicitTLSPort {
		err = n.sendImplicitTLS(addr, message)
	} else {
		err = smtp.SendMail(addr, n.auth(), n.cfg.From, []string{n.cfg.To}, message)
	}
	if err != nil {
		return domain.Classify(domain.ErrKindMailDispatch, fmt.Errorf("send mail: %w", err))
	}

	n.logger.Info("digest dispatched", "to", n.cfg.To, "summaries", len(summaries))
	return nil
}

func (n *Notifier) buildMessage(body string) []byte {
	date := n.now().Format("2006-01-02")
	subject := strings.ReplaceAll(n.cfg.Subject, "{date}", date)
	if strings.Contains(subject, "%s") {
		subject = fmt.Sprintf(subject, date)
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		n.cfg.From,
		n.cfg.To,
		subject,
		body,
	)
	return []byte(message)
}

func (n *Notifier) auth() smtp.Auth {
	if n.cfg.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SMTPHost)
}

// sendImplicitTLS handles SMTPS servers that expect TLS before any SMTP
// traffic instead of upgrading via STARTTLS.
func (n *Notifier) sendImplicitTLS(addr string, message []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.cfg.SMTPHost})
	if err != nil {
		return fmt.Errorf("tls dial: %w", err)
	}

	client, err := smtp.NewClient(conn, n.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if auth := n.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := client.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(n.cfg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := writer.Write(message); err != nil {
		writer.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	return client.Quit()
}
