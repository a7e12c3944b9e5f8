package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPNotifier sends mail through a plain SMTP relay.  Credentials are
// optional; when Username is empty the message is sent unauthenticated,
// which suits local relays such as Mailpit.
type SMTPNotifier struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (n *SMTPNotifier) Send(to, subject, body string) error {
	addr := n.Host + ":" + n.Port
	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}
	msg := strings.Join([]string{
		"From: " + n.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(addr, auth, n.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
