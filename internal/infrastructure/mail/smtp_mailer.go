// Package mail adaptadores de ports.Mailer: SMTP (gomail) y registro en log.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/pkg/config"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

var (
	_ ports.Mailer = (*SMTPMailer)(nil)
	_ ports.Mailer = (*LogMailer)(nil)
)

// dialer abstrae gomail.Dialer para tests.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer envía correos por SMTP con gomail.
type SMTPMailer struct {
	d    dialer
	from string
}

// NewSMTPMailer construye el mailer a partir de MailConfig.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	if cfg.UseTLS {
		d.TLSConfig = &tls.Config{ServerName: cfg.Server, MinVersion: tls.VersionTLS12}
	}
	return &SMTPMailer{d: d, from: cfg.DefaultSender}
}

// Send compone el mensaje multipart (texto + HTML opcional) y lo entrega.
func (s *SMTPMailer) Send(ctx context.Context, m ports.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.d.DialAndSend(buildMessage(s.from, m)); err != nil {
		return fmt.Errorf("mail: enviar a %s: %w", m.To, err)
	}
	return nil
}

func buildMessage(from string, m ports.Mail) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.TextBody)
	if m.HTMLBody != "" {
		msg.AddAlternative("text/html", m.HTMLBody)
	}
	return msg
}

// LogMailer registra los correos en el log sin enviarlos (MAIL_SERVER vacío).
type LogMailer struct {
	log *logger.Logger
}

// NewLogMailer construye el mailer de desarrollo.
func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send registra destinatario, asunto y cuerpo de texto.
func (l *LogMailer) Send(_ context.Context, m ports.Mail) error {
	l.log.Info().
		Str("to", m.To).
		Str("subject", m.Subject).
		Str("body", m.TextBody).
		Msg("[MAIL] envío simulado")
	return nil
}

// New elige el adaptador según la configuración.
func New(cfg config.MailConfig, log *logger.Logger) ports.Mailer {
	if !cfg.Enabled() {
		log.Warn().Msg("MAIL_SERVER no configurado: los correos solo se registran en el log")
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg)
}
