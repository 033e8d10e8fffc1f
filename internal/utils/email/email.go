package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/advisory-service/internal/config"
	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendForecastReport mails the revenue forecast summary
func (s *Sender) SendForecastReport(to string, f models.Forecast, generatedAt time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Revenue Forecast %s", generatedAt.Format("2006-01-02"))
	e.Text = []byte(FormatForecastReport(f, generatedAt))

	return s.deliver(e, to)
}

// SendLeadNotification tells the sales team about a new chat conversation
func (s *Sender) SendLeadNotification(to string, lead *models.Lead) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("New chat lead %s", lead.SessionID)

	var body strings.Builder
	body.WriteString("A visitor started a conversation with the website assistant.\n\n")
	for _, m := range lead.Transcript {
		fmt.Fprintf(&body, "[%s] %s\n\n", m.Role, m.Content)
	}
	e.Text = []byte(body.String())

	return s.deliver(e, to)
}

func (s *Sender) deliver(e *email.Email, to string) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// FormatForecastReport renders the plain-text body of the forecast report
func FormatForecastReport(f models.Forecast, generatedAt time.Time) string {
	var body strings.Builder
	body.WriteString("Revenue forecast for the next 12 months\n")
	fmt.Fprintf(&body, "Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04"))
	for _, s := range f.Sections {
		fmt.Fprintf(&body, "%-20s %14s %s  (%d, %s)\n", s.Label, s.Subtotal.StringFixed(2), f.Currency, s.Count, s.ProbabilityLabel)
	}
	fmt.Fprintf(&body, "\n%-20s %14s %s\n", "Total", f.Total.StringFixed(2), f.Currency)
	body.WriteString("\nBest regards,\nBack Office")
	return body.String()
}
