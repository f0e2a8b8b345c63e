package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/jdmdelivery/pawn-service/internal/config"
	"github.com/jdmdelivery/pawn-service/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// ResetLink pairs a user with the reset URL minted for them.
type ResetLink struct {
	Username string
	URL      string
}

// SendPasswordRecovery mails the reset links for every known user to the
// configured recovery address.
func (s *Sender) SendPasswordRecovery(to string, links []ResetLink) error {
	body := "Password reset links (valid for 1 hour):\n\n"
	for _, l := range links {
		body += fmt.Sprintf("  %s: %s\n", l.Username, l.URL)
	}
	body += "\nIf you did not request this, ignore this message.\n"

	return s.send(to, "Password recovery", body)
}

// SendDueSoonDigest mails the list of loans coming due within the window.
func (s *Sender) SendDueSoonDigest(to string, loans []models.DueLoan) error {
	if len(loans) == 0 {
		return nil
	}

	body := fmt.Sprintf("%d loan(s) due in the next 7 days:\n\n", len(loans))
	for _, l := range loans {
		body += fmt.Sprintf(
			"  #%d %s (%s) %.2f due %s\n",
			l.ID, l.CustomerName, l.ItemName, l.Amount, l.DueDate.Format("2006-01-02"),
		)
	}

	return s.send(to, "Loans due soon", body)
}

func (s *Sender) send(to, subject, body string) error {
	if !s.cfg.SMTPConfigured() {
		// Console fallback keeps the flows usable without an SMTP account.
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Infof("SMTP not configured, message body:\n%s", strings.TrimRight(body, "\n"))
		return nil
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
