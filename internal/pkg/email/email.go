package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// headerValue flattens a value onto a single header line.
func headerValue(v string) string {
	return headerBreaks.Replace(v)
}

// Config holds SMTP settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// InvitationEmail is the content of the mail sent to an invited contractor
type InvitationEmail struct {
	To             string
	ContractorName string
	EntityName     string
	ContractName   string
	ContractType   string
	PaymentRate    string
	Currency       string
	InvoicePolicy  string
	StartDate      string
	EndDate        string
	InvitationLink string
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendContractorInvitation(msg InvitationEmail) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       Config
	templates *template.Template
	send      sendFunc
	sleep     func(time.Duration)
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg Config) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail, time.Sleep)
}

func newEmailService(cfg Config, send sendFunc, sleep func(time.Duration)) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		sleep:     sleep,
	}, nil
}

// SendContractorInvitation sends the invitation email to the contractor
func (s *emailServiceImpl) SendContractorInvitation(msg InvitationEmail) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "contractor_invitation.html", msg); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(msg.To, fmt.Sprintf("%s invited you to a contract", msg.EntityName), body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", headerValue(s.cfg.FromName)), headerValue(from))
	headers += fmt.Sprintf("To: %s\r\n", headerValue(to))
	headers += fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(subject)))
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s
		if attempt < maxRetries {
			s.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
