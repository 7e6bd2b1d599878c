package mail

import (
	"fmt"
	"sync"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends plain-text mail, best effort
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds SMTP credentials
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer implements Mailer over SMTP
type SMTPMailer struct {
	cfg    *SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(cfg *SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

// Send delivers a single message
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// MemoryMailer records sent mail for tests
type MemoryMailer struct {
	mu   sync.Mutex
	Sent []struct {
		To, Subject, Body string
	}

	// Err, when set, is returned by Send
	Err error
}

// NewMemoryMailer creates an empty in-memory mailer
func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

// Send records the message
func (m *MemoryMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, struct{ To, Subject, Body string }{to, subject, body})
	return nil
}
