package email

import "policytracker/internal/logger"

// nopSender stands in when SMTP is not configured. Reports are logged
// and dropped so local environments run without a mail server.
type nopSender struct{}

func NewNopSender() Sender {
	return &nopSender{}
}

func (s *nopSender) SendMonthlyReport(to string, report *MonthlyReport) error {
	logger.Info("email disabled, dropping monthly report", "to", to, "month", report.Month)
	return nil
}
