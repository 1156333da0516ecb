package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
	admin  string
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		admin:  cfg.AdminEmail,
	}
}

func (m *Mailer) AdminEmail() string {
	return m.admin
}

// Send delivers one HTML message. Callers run in the consumer worker, so a
// failure is returned for the message to be retried, not swallowed.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	return nil
}
