package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.Username)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	return dialer.DialAndSend(msg)
}

// Body renders the plain-text verification email.
func Body(username, code string) string {
	return fmt.Sprintf(
		"Hello %s,\n\nYour WhisperBox verification code is %s.\nIt is valid for one hour. If you did not sign up, ignore this email.\n",
		username, code,
	)
}
