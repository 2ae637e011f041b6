package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"frontdesk-rental-backend/internal/domain"
	"frontdesk-rental-backend/internal/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MailSender is the part of the SendGrid client the notifier needs.
type MailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client     MailSender
	fromEmail  string
	fromName   string
	recipients []string
}

// NewSendGridEmailService sends operations e-mails to recipients through SendGrid.
func NewSendGridEmailService(apiKey, fromEmail, fromName string, recipients []string) EmailService {
	return NewEmailServiceWithSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName, recipients)
}

func NewEmailServiceWithSender(client MailSender, fromEmail, fromName string, recipients []string) EmailService {
	return &sendGridEmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		recipients: recipients,
	}
}

func (s *sendGridEmailService) SendTroubleReport(ctx context.Context, report TroubleReport) error {
	subject := fmt.Sprintf("[Trouble] %s %s", report.ServiceType, report.RentalID)
	reportedBy := report.ReportedBy
	if reportedBy == "" {
		reportedBy = "unknown"
	}
	body := fmt.Sprintf("Rental: %s\nService: %s\nCustomer: %s\nStatus before report: %s\nReported by: %s\nReported at: %s\n\n%s\n",
		report.RentalID, report.ServiceType, report.CustomerName, report.Status, reportedBy,
		domain.FormatTime(report.ReportedAt), report.Notes)
	return s.send(ctx, subject, body)
}

func (s *sendGridEmailService) SendDailySummary(ctx context.Context, counts map[domain.RentalStatus]int) error {
	statuses := make([]string, 0, len(counts))
	for st := range counts {
		statuses = append(statuses, string(st))
	}
	sort.Strings(statuses)

	var b strings.Builder
	total := 0
	for _, st := range statuses {
		n := counts[domain.RentalStatus(st)]
		total += n
		fmt.Fprintf(&b, "%-20s %d\n", st, n)
	}
	fmt.Fprintf(&b, "%-20s %d\n", "Total", total)
	return s.send(ctx, "Daily rental summary", b.String())
}

func (s *sendGridEmailService) send(ctx context.Context, subject, plainText string) error {
	if len(s.recipients) == 0 {
		logger.Debug("No notification recipients configured, skipping e-mail", "subject", subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject
	p := mail.NewPersonalization()
	for _, to := range s.recipients {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", plainText))

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject, "recipients", len(s.recipients))
	response, err := s.client.Send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil, "status", response.StatusCode)
	return nil
}
