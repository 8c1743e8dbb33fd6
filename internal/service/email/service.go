package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"scanplant/internal/config"
)

type Service interface {
	SendNotificationEmail(ctx context.Context, toEmail, recipientName, title, message string, link *string) error
}

const layoutTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2d1f;">
	<h2>{{.Title}}</h2>
	<p>Hi {{.Name}},</p>
	{{template "content" .}}
	<p style="color: #6b7b6b; font-size: 12px;">ScanPlant</p>
</body>
</html>`

const notificationTemplate = `{{define "content"}}
	<p>{{.Message}}</p>
	{{if .Link}}<p><a href="{{.Link}}">Open in ScanPlant</a></p>{{end}}
{{end}}`

var templates = template.Must(template.Must(template.New("layout").Parse(layoutTemplate)).Parse(notificationTemplate))

type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	emails sender
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &service{
		emails: client.Emails,
		config: cfg,
	}
}

func (s *service) sendEmail(ctx context.Context, toEmail, subject string, data interface{}) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "layout", data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("ScanPlant <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err := s.emails.SendWithContext(ctx, params)
	return err
}

func (s *service) SendNotificationEmail(ctx context.Context, toEmail, recipientName, title, message string, link *string) error {
	data := struct {
		Title   string
		Name    string
		Message string
		Link    string
	}{
		Title:   title,
		Name:    recipientName,
		Message: message,
		Link:    s.absoluteLink(link),
	}
	return s.sendEmail(ctx, toEmail, title, data)
}

// absoluteLink turns an in-app path into a link on the configured domain.
func (s *service) absoluteLink(link *string) string {
	if link == nil || *link == "" {
		return ""
	}
	if len(*link) > 0 && (*link)[0] == '/' {
		return fmt.Sprintf("https://%s%s", s.config.Domain, *link)
	}
	return *link
}
