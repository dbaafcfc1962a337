package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

// bodyTemplate frames every message; the engine supplies plain-text bodies
// and the frame keeps client mail and internal mail visually apart.
var bodyTemplate = template.Must(template.New("body").Parse(
	`<html><body style="font-family: sans-serif; white-space: pre-line;">
{{- if .Internal}}<p style="color: #888;">[internal notification]</p>{{end -}}
<p>{{.Body}}</p>
</body></html>`))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func (s *EmailSender) senderName(kind Kind) string {
	switch kind {
	case KindInternal:
		return "Sales pipeline"
	case KindFailure:
		return "Support"
	default:
		return "Your fitness team"
	}
}

// Send delivers one message to every recipient. Transport failures are
// returned as-is: the caller leaves its milestone flag unset and the
// reconciliation sweep retries on the next cycle.
func (s *EmailSender) Send(kind Kind, to []Recipient, subject, body string, attachments ...Attachment) error {
	if len(to) == 0 {
		return fmt.Errorf("mail: no recipients for %q", subject)
	}

	var rendered bytes.Buffer
	err := bodyTemplate.Execute(&rendered, struct {
		Body     string
		Internal bool
	}{Body: body, Internal: kind == KindInternal})
	if err != nil {
		return fmt.Errorf("mail: render body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.senderName(kind))
	addresses := make([]string, 0, len(to))
	for _, r := range to {
		addresses = append(addresses, m.FormatAddress(r.Email, r.Name))
	}
	m.SetHeader("To", addresses...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", rendered.String())

	for _, a := range attachments {
		m.Attach(a.Path, gomail.Rename(a.Name))
	}

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: smtp send failed: %w", err)
	}

	return nil
}
