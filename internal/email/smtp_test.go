package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-br/chamados-service/internal/config"
)

func TestRenderTicketCreated(t *testing.T) {
	msg := TicketCreatedMessage{
		Title:         "Impressora sem toner",
		Description:   "A impressora do 2º andar parou",
		Priority:      "alta",
		RequesterName: "Maria Silva",
	}
	subject, htmlBody, plainBody := RenderTicketCreated("João", msg)

	assert.Equal(t, "Novo chamado: Impressora sem toner", subject)
	for _, body := range []string{htmlBody, plainBody} {
		assert.Contains(t, body, "João")
		assert.Contains(t, body, "Maria Silva")
		assert.Contains(t, body, "Impressora sem toner")
		assert.Contains(t, body, "alta")
		assert.Contains(t, body, "A impressora do 2º andar parou")
	}
	assert.Contains(t, htmlBody, "<html>")
	assert.NotContains(t, plainBody, "<html>")
}

func TestRenderTicketCreatedEscapesMarkup(t *testing.T) {
	msg := TicketCreatedMessage{
		Title:         `<script>alert("x")</script>`,
		Description:   `<img src=x onerror=alert(1)>`,
		Priority:      "alta",
		RequesterName: "Maria & Cia",
	}
	_, htmlBody, _ := RenderTicketCreated("João", msg)

	assert.NotContains(t, htmlBody, "<script>")
	assert.NotContains(t, htmlBody, "<img")
	assert.Contains(t, htmlBody, "&lt;script&gt;")
	assert.Contains(t, htmlBody, "Maria &amp; Cia")
}

func TestSenderWithoutHostIsNoop(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{})
	err := sender.SendTicketCreated("alguem@example.com", "Alguém", TicketCreatedMessage{Title: "x"})
	assert.NoError(t, err)
}
