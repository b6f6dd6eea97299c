// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	// Approval Submitted Template (sent to admins when a request enters the queue)
	s.templates["approval_submitted"] = template.Must(template.New("approval_submitted").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1d4ed8; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .request-card { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .btn { display: inline-block; background: #1d4ed8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📥 New Approval Request</h1>
        </div>
        <div class="content">
            <p>Hi {{.AdminName}},</p>
            <p>A new request is waiting for your review.</p>

            <div class="request-card">
                <p><strong>Action:</strong> {{.Action}}</p>
                <p><strong>Requested by:</strong> {{.RequesterName}}</p>
                <p><strong>Request ID:</strong> {{.RequestID}}</p>
            </div>

            <a href="{{.ReviewURL}}" class="btn">Review Request</a>
        </div>
        <div class="footer">
            <p>ASC Montjoie • Club Portal</p>
        </div>
    </div>
</body>
</html>
`))

	// Approval Decided Template (sent to the requester)
	s.templates["approval_decided"] = template.Must(template.New("approval_decided").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #047857; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .header.rejected { background: #b91c1c; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .status-approved { color: #047857; font-weight: bold; }
        .status-rejected { color: #b91c1c; font-weight: bold; }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header{{if eq .Status "rejected"}} rejected{{end}}">
            <h1>{{if eq .Status "approved"}}✅ Request Approved{{else}}❌ Request Rejected{{end}}</h1>
        </div>
        <div class="content">
            <p>Hi {{.UserName}},</p>
            <p>Your request <strong>{{.Action}}</strong> has been
               <span class="status-{{.Status}}">{{.Status}}</span>.</p>
            {{if eq .Status "approved"}}
            <p>The change has been applied to the portal.</p>
            {{else}}
            <p>Nothing was changed. Contact an administrator if you believe this is a mistake.</p>
            {{end}}
        </div>
        <div class="footer">
            <p>ASC Montjoie • Club Portal</p>
        </div>
    </div>
</body>
</html>
`))

	// Pending Digest Template (daily cron summary for admins)
	s.templates["pending_digest"] = template.Must(template.New("pending_digest").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #b45309; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .request-list { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; }
        .request-item { padding: 12px; border-bottom: 1px solid #e5e7eb; }
        .request-item:last-child { border-bottom: none; }
        .btn { display: inline-block; background: #b45309; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>⏳ Pending Approvals</h1>
        </div>
        <div class="content">
            <p>Hi {{.AdminName}},</p>
            <p>There {{if eq .PendingCount 1}}is <strong>1</strong> request{{else}}are <strong>{{.PendingCount}}</strong> requests{{end}} waiting for review.</p>

            <div class="request-list">
                {{range .Requests}}
                <div class="request-item">
                    <strong>{{.Action}}</strong> — requested by {{.RequestedBy}}
                </div>
                {{end}}
            </div>

            <a href="{{.DashboardURL}}" class="btn">Open Review Queue</a>
        </div>
        <div class="footer">
            <p>ASC Montjoie • Club Portal</p>
        </div>
    </div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	recipients := append(email.To, email.CC...)
	recipients = append(recipients, email.BCC...)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		_, err = w.Write(msg.Bytes())
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	// Non-TLS
	return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// ApprovalSubmittedData holds data for the new-request email to admins
type ApprovalSubmittedData struct {
	AdminName     string
	Action        string
	RequesterName string
	RequestID     string
	ReviewURL     string
}

// SendApprovalSubmitted notifies an admin of a new pending request
func (s *Service) SendApprovalSubmitted(to string, data ApprovalSubmittedData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[ASC Montjoie] New approval request: %s", data.Action),
		"approval_submitted",
		data,
	)
}

// ApprovalDecidedData holds data for the decision email to the requester
type ApprovalDecidedData struct {
	UserName string
	Action   string
	Status   string
}

// SendApprovalDecided notifies the requester of the decision
func (s *Service) SendApprovalDecided(to string, data ApprovalDecidedData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[ASC Montjoie] Your request was %s", data.Status),
		"approval_decided",
		data,
	)
}

// DigestRequest is one line of the pending digest
type DigestRequest struct {
	Action      string
	RequestedBy string
}

// PendingDigestData holds data for the daily pending-approvals digest
type PendingDigestData struct {
	AdminName    string
	PendingCount int
	Requests     []DigestRequest
	DashboardURL string
}

// SendPendingDigest sends the daily queue summary to an admin
func (s *Service) SendPendingDigest(to string, data PendingDigestData) error {
	return s.SendWithTemplate(
		[]string{to},
		fmt.Sprintf("[ASC Montjoie] %d approval(s) pending review", data.PendingCount),
		"pending_digest",
		data,
	)
}
