// Package mailer carries email jobs from the API to the email worker and
// sends them through Mailgun.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "welcome"
	Data     map[string]any `json:"data,omitempty"`
}

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}

var welcomeHTML = template.Must(template.New("welcome").Parse(`
<h2>Welcome to VideoTube, {{.Fullname}}!</h2>
<p>Your channel <strong>@{{.Username}}</strong> is ready. Upload your first video and start building your audience.</p>
`))

// WelcomeJob builds the registration welcome email job.
func WelcomeJob(to, fullname, username string) EmailJob {
	return EmailJob{
		To:       to,
		Subject:  "Welcome to VideoTube",
		Template: "welcome",
		Data:     map[string]any{"Fullname": fullname, "Username": username},
	}
}

// Render produces the subject, text and HTML bodies for a job. Jobs carrying
// explicit Text/HTML bodies pass through untouched.
func Render(job EmailJob) (subject, text, html string, err error) {
	subject, text, html = job.Subject, job.Text, job.HTML
	if job.Template != "welcome" {
		return subject, text, html, nil
	}
	fullname, _ := job.Data["Fullname"].(string)
	username, _ := job.Data["Username"].(string)

	var buf bytes.Buffer
	if err := welcomeHTML.Execute(&buf, map[string]string{"Fullname": fullname, "Username": username}); err != nil {
		return "", "", "", err
	}
	text = fmt.Sprintf("Welcome to VideoTube, %s! Your channel @%s is ready.", fullname, username)
	return subject, text, buf.String(), nil
}
