package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/eshop/backend/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers a templated message to a single recipient. The OTP issuer
// only depends on this contract, not on SMTP.
type Sender interface {
	Send(to, subject, templateName string, data map[string]interface{}) error
}

// SMTPSender implements Sender over a plain SMTP relay.
type SMTPSender struct {
	cfg       *config.SMTPConfig
	templates *template.Template
	logger    *logrus.Logger
}

func NewSMTPSender(cfg *config.SMTPConfig, logger *logrus.Logger) (*SMTPSender, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPSender{
		cfg:       cfg,
		templates: templates,
		logger:    logger,
	}, nil
}

func (s *SMTPSender) Send(to, subject, templateName string, data map[string]interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", templateName, err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body.String()))

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		s.logger.WithError(err).WithField("to", to).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":       to,
		"template": templateName,
	}).Info("Email sent")
	return nil
}
