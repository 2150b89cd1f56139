package email

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"
)

// Config holds SMTP settings. The password comes from config/env at
// startup and is never logged.
type Config struct {
	SMTPHost  string
	SMTPPort  int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (c Config) Validate() error {
	if c.SMTPHost == "" || c.SMTPPort == 0 {
		return fmt.Errorf("smtp host and port are required")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// MonthlyReport is the data rendered into the report email.
type MonthlyReport struct {
	AgentName        string
	Month            string
	PoliciesAdded    int
	RenewalsDue      int
	CommissionEarned float64
	OcrScansUsed     int
	StorageUsedMB    float64
}

// Sender delivers transactional mail.
type Sender interface {
	SendMonthlyReport(to string, report *MonthlyReport) error
}

type smtpSender struct {
	config Config
	dialer *gomail.Dialer
	tmpl   *template.Template
}

var reportTemplate = template.Must(template.New("monthly_report").Parse(`
<h2>PolicyTracker monthly summary — {{.Month}}</h2>
<p>Hi {{.AgentName}},</p>
<ul>
  <li>Policies added: {{.PoliciesAdded}}</li>
  <li>Renewals due in the next 30 days: {{.RenewalsDue}}</li>
  <li>Commission recorded: ₹{{printf "%.2f" .CommissionEarned}}</li>
  <li>OCR scans used: {{.OcrScansUsed}}</li>
  <li>Storage used: {{printf "%.1f" .StorageUsedMB}} MB</li>
</ul>
`))

// NewSMTPSender builds a gomail-backed sender.
func NewSMTPSender(cfg Config) (Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	return &smtpSender{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		tmpl:   reportTemplate,
	}, nil
}

func (s *smtpSender) SendMonthlyReport(to string, report *MonthlyReport) error {
	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Your PolicyTracker summary for %s", report.Month))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}
