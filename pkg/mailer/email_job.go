package mailer

import (
	"strings"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either set Template and Data, or Subject with Text and/or HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome", "login_notification"
	Data     map[string]any `json:"data,omitempty"`
}

// EnsureRecipient fills Data.Email and Data.RecipientEmail from To when missing.
func (j *EmailJob) EnsureRecipient() {
	if j.Data == nil {
		j.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, ok := j.Data[k].(string); !ok || strings.TrimSpace(v) == "" {
			j.Data[k] = j.To
		}
	}
}
