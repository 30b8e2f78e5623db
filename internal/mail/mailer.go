package mail

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"panchayat/internal/config"
)

var ErrNoRecipient = errors.New("no recipients specified")

// Mailer sends notification mail over SMTP.
type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendHTML delivers a single HTML message to one recipient.
func (m *Mailer) SendHTML(to, subject, htmlBody string) error {
	msg, err := m.message(to, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) message(to, subject, htmlBody string) (*gomail.Message, error) {
	if to == "" {
		return nil, ErrNoRecipient
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return msg, nil
}
