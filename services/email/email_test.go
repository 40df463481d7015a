package emailsvc

import (
	"net/mail"
	"testing"
	texttmpl "text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func testConf() *core.Config {
	return &core.Config{
		AppName:          "Academia",
		DefaultFromEmail: mail.Address{Name: "Academia", Address: "noreply@academia.test"},
	}
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	ResetSentMessages()
	svc := NewConsoleServiceMock(testConf())

	tmpl := texttmpl.Must(texttmpl.New("hi").Parse("Hi {{.}}!"))
	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "ada@academia.test"}}, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "bob@academia.test"}}, Subject: "tmpl", Template: tmpl, TemplateData: "bob"},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "lost"},
		&core.EmailMessage{To: []mail.Address{{Address: "eve@academia.test"}}, Subject: "no content"},
	)

	sent := GetSentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "hello", sent[0].TextContent)
	assert.Equal(t, "Hi bob!", sent[1].TextContent)
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConf(), nil).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Ada", Address: "ada@academia.test"}},
		Cc:          []mail.Address{{Address: "dean@academia.test"}},
		Subject:     "Welcome",
		TextContent: "hello",
	})

	assert.Equal(t, "noreply@academia.test", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[Academia] Welcome", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "ada@academia.test", p.To[0].Address)
	require.Len(t, p.CC, 1)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "hello", m.Content[0].Value)
}
