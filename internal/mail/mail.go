// Package mail sends the password-recovery email through an SMTP relay.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/billfold-io/billfold/internal/config"
)

// Sender delivers a password-reset email; satisfied by Mailer and by the
// handler-test stub.
type Sender interface {
	SendPasswordReset(to, name, resetLink string) error
}

// Mailer is an SMTP client configured once at startup. Delivery failures
// are not retried here; they propagate to the caller.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	tmpl     *template.Template
}

var resetTemplate = template.Must(template.New("reset").Parse(`<html>
<body style="font-family: Arial, sans-serif;">
	<h2>Password Recovery</h2>
	<p>Hi {{.Name}},</p>
	<p>We received a request to reset your password. Click the link below to choose a new one:</p>
	<p><a href="{{.ResetLink}}">Reset password</a></p>
	<p>If you did not ask for this change, you can safely ignore this email.</p>
</body>
</html>`))

// New builds a Mailer from process configuration.
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.Mail.Host,
		port:     cfg.Mail.Port,
		username: cfg.Mail.Username,
		password: cfg.Mail.Password,
		from:     cfg.Mail.From,
		fromName: cfg.Mail.FromName,
		tmpl:     resetTemplate,
	}
}

// SendPasswordReset renders the reset template with {name, reset_link}
// and sends it as an HTML email.
func (m *Mailer) SendPasswordReset(to, name, resetLink string) error {
	var body bytes.Buffer
	data := struct {
		Name      string
		ResetLink string
	}{Name: name, ResetLink: resetLink}
	if err := m.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render reset email: %v", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: Password Recovery\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg.Bytes())
}
