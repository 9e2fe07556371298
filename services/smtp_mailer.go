package services

import (
	"fmt"
	"net/smtp"

	"survivor-pool-go/logging"
)

// SMTPConfig holds SMTP connection settings for the reminder mailer
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// SMTPMailer delivers reminder emails over plain SMTP
type SMTPMailer struct {
	config SMTPConfig
	logger *logging.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: logging.WithPrefix("SMTPMailer"),
	}
}

// IsConfigured returns true when the mailer has enough settings to send
func (m *SMTPMailer) IsConfigured() bool {
	return m.config.Host != "" && m.config.Username != "" &&
		m.config.Password != "" && m.config.From != ""
}

// Send delivers one plain-text message
func (m *SMTPMailer) Send(toEmail, toName, subject, body string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("smtp mailer not configured")
	}

	message := fmt.Sprintf("From: %s <%s>\r\nTo: %s <%s>\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		m.config.FromName, m.config.From, toName, toEmail, subject, body)

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	addr := m.config.Host + ":" + m.config.Port

	if err := smtp.SendMail(addr, auth, m.config.From, []string{toEmail}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	m.logger.Debugf("Sent reminder to %s", toEmail)
	return nil
}
