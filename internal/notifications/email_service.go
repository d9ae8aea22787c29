package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"
)

// EmailService renders and sends customer emails for booking events.
type EmailService interface {
	SendBookingEvent(event *BookingEvent) error
}

// SMTPConfig holds mail server settings, read from the environment.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func LoadSMTPConfig() *SMTPConfig {
	return &SMTPConfig{
		Host:     getEnvOr("SMTP_HOST", "localhost"),
		Port:     getEnvOr("SMTP_PORT", "587"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getEnvOr("SMTP_FROM", "noreply@courtly.local"),
	}
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type smtpEmailService struct {
	config    *SMTPConfig
	templates *template.Template
}

const emailTemplates = `
{{define "BOOKING_CONFIRMED"}}
<h2>Booking confirmed</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your booking <strong>{{.BookingNo}}</strong> for {{.BookingDate}} is confirmed.</p>
<p>Total: {{.TotalCost}} coins.</p>
{{end}}

{{define "BOOKING_CANCELLED"}}
<h2>Booking cancelled</h2>
<p>Hi {{.CustomerName}},</p>
<p>Your booking <strong>{{.BookingNo}}</strong> for {{.BookingDate}} has been cancelled.</p>
{{if .RefundedCoins}}<p>{{.RefundedCoins}} coins were refunded to your wallet.</p>{{end}}
{{end}}
`

// NewSMTPEmailService creates an email service backed by a plain SMTP relay.
func NewSMTPEmailService(config *SMTPConfig) (EmailService, error) {
	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &smtpEmailService{config: config, templates: tmpl}, nil
}

func (s *smtpEmailService) SendBookingEvent(event *BookingEvent) error {
	if event.CustomerEmail == "" {
		return nil
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, string(event.Type), event); err != nil {
		return fmt.Errorf("failed to render email for %s: %w", event.Type, err)
	}

	subject := "Booking " + event.BookingNo
	switch event.Type {
	case EventBookingConfirmed:
		subject = "Booking confirmed: " + event.BookingNo
	case EventBookingCancelled:
		subject = "Booking cancelled: " + event.BookingNo
	}

	msg := []byte("From: " + s.config.From + "\r\n" +
		"To: " + event.CustomerEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n" +
		body.String())

	addr := s.config.Host + ":" + s.config.Port
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}
	if err := smtp.SendMail(addr, auth, s.config.From, []string{event.CustomerEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", event.CustomerEmail, err)
	}
	return nil
}
