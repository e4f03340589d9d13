package infra

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends invoice emails over SMTP.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewMailer(host string, port int, user, password string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     user,
	}
}

// Configurado reports whether SMTP credentials are present; without them the
// email pipeline is silently skipped.
func (m *Mailer) Configurado() bool { return m.host != "" && m.user != "" }

// EnviarFactura emails the invoice PDF to the customer.
func (m *Mailer) EnviarFactura(destinatario, numeroFactura, rutaPDF string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{destinatario}
	e.Subject = fmt.Sprintf("Factura %s", numeroFactura)
	e.Text = []byte(fmt.Sprintf(
		"Adjuntamos la factura %s correspondiente a su compra.\n\nGracias por su preferencia.",
		numeroFactura))
	if _, err := e.AttachFile(rutaPDF); err != nil {
		return fmt.Errorf("adjuntar %s: %w", rutaPDF, err)
	}
	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return e.Send(addr, smtp.PlainAuth("", m.user, m.password, m.host))
}
