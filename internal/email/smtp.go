package email

import (
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/helpdesk-br/chamados-service/internal/config"
)

// Sender delivers transactional notification email.
type Sender interface {
	SendTicketCreated(to, toName string, msg TicketCreatedMessage) error
}

// TicketCreatedMessage carries the template fields for a new-ticket alert.
type TicketCreatedMessage struct {
	Title         string
	Description   string
	Priority      string
	RequesterName string
}

type smtpSender struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPSender builds a sender over a gomail dialer. With no host
// configured it returns a no-op sender and notifications are skipped.
func NewSMTPSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return nopSender{}
	}
	return &smtpSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

type nopSender struct{}

func (nopSender) SendTicketCreated(string, string, TicketCreatedMessage) error { return nil }

func (s *smtpSender) SendTicketCreated(to, toName string, msg TicketCreatedMessage) error {
	subject, htmlBody, plainBody := RenderTicketCreated(toName, msg)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.cfg.FromAddress, s.cfg.FromName)
	m.SetAddressHeader("To", to, toName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}

// Title and description come straight from the requester; html/template
// escapes them so markup in a ticket cannot inject into the email.
var ticketCreatedTmpl = template.Must(template.New("ticket_created").Parse(`
		<html>
		<body>
			<h2>Novo chamado aberto</h2>
			<p>Olá {{.ToName}},</p>
			<p><strong>{{.RequesterName}}</strong> abriu um novo chamado.</p>
			<p><strong>Título:</strong> {{.Title}}</p>
			<p><strong>Prioridade:</strong> {{.Priority}}</p>
			<p><strong>Descrição:</strong></p>
			<p>{{.Description}}</p>
		</body>
		</html>
	`))

// RenderTicketCreated produces the subject and bodies for a new-ticket alert.
func RenderTicketCreated(toName string, msg TicketCreatedMessage) (subject, htmlBody, plainBody string) {
	subject = fmt.Sprintf("Novo chamado: %s", msg.Title)

	var html strings.Builder
	if err := ticketCreatedTmpl.Execute(&html, struct {
		ToName string
		TicketCreatedMessage
	}{toName, msg}); err != nil {
		// static template; Execute cannot fail on a strings.Builder
		panic(err)
	}
	htmlBody = html.String()

	plainBody = fmt.Sprintf(`Olá %s,

%s abriu um novo chamado.

Título: %s
Prioridade: %s

%s
`, toName, msg.RequesterName, msg.Title, msg.Priority, msg.Description)

	return subject, htmlBody, plainBody
}
