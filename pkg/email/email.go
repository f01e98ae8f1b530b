package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
)

// ErrDisabled is returned when sending is switched off in config
var ErrDisabled = errors.New("email sending is disabled")

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	Enabled      bool
}

// AssignmentNotice is what an executive is told when a lead is assigned to them
type AssignmentNotice struct {
	AssigneeName string
	VisitorName  string
	Service      string
	Role         string
	AssignedBy   string
}

// SendFunc delivers a fully built message; it matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   SendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// WithSender replaces the SMTP transport, e.g. with a recorder in tests
func (s *EmailService) WithSender(send SendFunc) *EmailService {
	s.send = send
	return s
}

// SendAssignmentNotice emails an executive about a newly assigned lead
func (s *EmailService) SendAssignmentNotice(toEmail string, notice AssignmentNotice) error {
	if !s.config.Enabled {
		return ErrDisabled
	}

	htmlContent, err := renderAssignment(notice)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("New lead assigned: %s", notice.VisitorName)
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

var assignmentTmpl = template.Must(template.New("assignment").Parse(assignmentTemplate))

func renderAssignment(n AssignmentNotice) (string, error) {
	var buf bytes.Buffer
	if err := assignmentTmpl.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const assignmentTemplate = `
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>New lead assigned</title></head>
<body style="margin: 0; padding: 24px; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; padding: 30px;">
        <tr><td>
            <h2 style="color: #1a1a2e; margin: 0 0 20px 0;">Hello {{.AssigneeName}},</h2>
            <p style="color: #4a5568; font-size: 16px; line-height: 1.6;">
                <strong>{{.VisitorName}}</strong>{{if .Service}} ({{.Service}}){{end}} has been assigned to you as {{.Role}}{{if .AssignedBy}} by {{.AssignedBy}}{{end}}.
            </p>
            <p style="color: #718096; font-size: 14px;">Open the dashboard to follow up.</p>
        </td></tr>
    </table>
</body>
</html>
`
