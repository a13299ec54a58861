package mail

import (
	"bytes"
	"testing"

	"github.com/billfold-io/billfold/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTemplateRendering(t *testing.T) {
	var body bytes.Buffer
	err := resetTemplate.Execute(&body, struct {
		Name      string
		ResetLink string
	}{Name: "Alice", ResetLink: "https://app.example.com/reset?token=abc"})
	require.NoError(t, err)

	html := body.String()
	assert.Contains(t, html, "Hi Alice,")
	assert.Contains(t, html, `href="https://app.example.com/reset?token=abc"`)
}

func TestResetTemplateEscapesName(t *testing.T) {
	var body bytes.Buffer
	err := resetTemplate.Execute(&body, struct {
		Name      string
		ResetLink string
	}{Name: "<script>alert(1)</script>", ResetLink: "https://example.com"})
	require.NoError(t, err)

	assert.NotContains(t, body.String(), "<script>")
}

func TestNewReadsConfig(t *testing.T) {
	var cfg config.Config
	cfg.Mail.Host = "smtp.example.com"
	cfg.Mail.Port = 2525
	cfg.Mail.Username = "user"
	cfg.Mail.Password = "pass"
	cfg.Mail.From = "noreply@example.com"
	cfg.Mail.FromName = "Billfold"

	m := New(&cfg)
	assert.Equal(t, "smtp.example.com", m.host)
	assert.Equal(t, 2525, m.port)
	assert.Equal(t, "noreply@example.com", m.from)
}
