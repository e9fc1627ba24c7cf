package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/suraksha-api/pkg/mailer"
	mailtpl "github.com/oksasatya/suraksha-api/pkg/mailer/templates"
)

// SubjectFor is the fallback subject when a job carries neither a subject
// nor a known template.
func SubjectFor(template string) string {
	switch strings.ToLower(template) {
	case mailtpl.VerifyEmail:
		return "Verify your email address"
	case mailtpl.ForgotPassword:
		return "Reset your password"
	default:
		return "Notification"
	}
}

// EnsureRecipient copies job.To into the template data when missing.
func EnsureRecipient(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
}

// RenderEmailJob resolves subject, text and html for a queued job. Jobs
// naming a template are rendered from it; others are sent as given.
func RenderEmailJob(job *mailer.EmailJob) (subject, text, html string, err error) {
	EnsureRecipient(job)
	subject, text, html = job.Subject, job.Text, job.HTML
	if job.Template != "" {
		name := strings.ToLower(job.Template)
		if !mailtpl.Known(name) {
			return "", "", "", fmt.Errorf("unknown email template %q", job.Template)
		}
		subject, text, html, err = mailtpl.Render(name, job.Data)
		if err != nil {
			return "", "", "", err
		}
	}
	if strings.TrimSpace(subject) == "" {
		subject = SubjectFor(job.Template)
	}
	if text == "" && html == "" {
		return "", "", "", fmt.Errorf("email job for %s has no body", job.To)
	}
	return subject, text, html, nil
}
