// Package notification compone y envía los correos de confirmación e invitación.
// El envío es de mejor esfuerzo: los errores se registran y no se devuelven.
package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/jhoicas/encuestas-api/internal/application/ports"
	"github.com/jhoicas/encuestas-api/pkg/logger"
)

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<html><body>
<h2>Bienvenido a {{.App}}</h2>
<p>Hola {{.Name}},</p>
<p>Confirma tu correo electrónico haciendo clic en el siguiente enlace:</p>
<p><a href="{{.Link}}">Confirmar mi email</a></p>
<p>El enlace vence en {{.Hours}} horas.</p>
</body></html>`))

var invitationHTML = template.Must(template.New("invitation").Parse(`<html><body>
<h2>{{.App}}: invitación a votar</h2>
<p>Hola {{.Name}},</p>
<p>Estás habilitado para participar en la encuesta. Ingresa con el siguiente enlace:</p>
<p><a href="{{.Link}}">Votar ahora</a></p>
</body></html>`))

// ErrMailerDisabled no hay Mailer configurado.
var ErrMailerDisabled = errors.New("notification: envío de correo no configurado")

type mailData struct {
	App   string
	Name  string
	Link  string
	Hours int
}

// Notifier envía correos a través del Mailer configurado.
type Notifier struct {
	mailer  ports.Mailer
	log     *logger.Logger
	appName string
}

// NewNotifier construye el notificador.
func NewNotifier(mailer ports.Mailer, log *logger.Logger, appName string) *Notifier {
	return &Notifier{mailer: mailer, log: log, appName: appName}
}

// SendConfirmation correo con el enlace de confirmación de cuenta. Devuelve true si se envió.
func (n *Notifier) SendConfirmation(ctx context.Context, to, name, link string, ttlHours int) bool {
	d := mailData{App: n.appName, Name: name, Link: link, Hours: ttlHours}
	text := fmt.Sprintf("Hola %s,\n\nConfirma tu correo en: %s\nEl enlace vence en %d horas.\n", name, link, ttlHours)
	return n.send(ctx, to, "Confirma tu correo - "+n.appName, text, confirmationHTML, d)
}

// SendInvitation correo de invitación a votar.
func (n *Notifier) SendInvitation(ctx context.Context, to, name, link string) error {
	if n == nil || n.mailer == nil {
		return ErrMailerDisabled
	}
	d := mailData{App: n.appName, Name: name, Link: link}
	text := fmt.Sprintf("Hola %s,\n\nEstás habilitado para votar. Ingresa en: %s\n", name, link)
	m, err := compose(to, "Invitación a votar - "+n.appName, text, invitationHTML, d)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, m)
}

func (n *Notifier) send(ctx context.Context, to, subject, text string, tpl *template.Template, d mailData) bool {
	if n == nil || n.mailer == nil {
		return false
	}
	m, err := compose(to, subject, text, tpl, d)
	if err == nil {
		err = n.mailer.Send(ctx, m)
	}
	if err != nil {
		n.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("error enviando correo")
		return false
	}
	return true
}

func compose(to, subject, text string, tpl *template.Template, d mailData) (ports.Mail, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, d); err != nil {
		return ports.Mail{}, fmt.Errorf("notification: plantilla %s: %w", tpl.Name(), err)
	}
	return ports.Mail{To: to, Subject: subject, TextBody: text, HTMLBody: buf.String()}, nil
}
