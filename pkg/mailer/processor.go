package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota // sent
	Drop                   // unusable message, do not requeue
	Requeue                // transient send failure
)

var ErrEmptyJob = errors.New("email job has no recipient or content")

// Processor turns queued EmailJob payloads into sent emails.
type Processor struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewProcessor(sender Sender, logger *logrus.Logger) *Processor {
	return &Processor{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Prepare renders job into subject, text and html.
func Prepare(job *EmailJob) (subject, text, html string, err error) {
	if strings.TrimSpace(job.To) == "" {
		return "", "", "", ErrEmptyJob
	}
	job.EnsureRecipient()

	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			return "", "", "", fmt.Errorf("unknown template %q", job.Template)
		}
		return mailtpl.Render(job.Template, job.Data)
	}
	if job.Text == "" && job.HTML == "" {
		return "", "", "", ErrEmptyJob
	}
	return job.Subject, job.Text, job.HTML, nil
}

// Process decodes, renders and sends one message body.
func (p *Processor) Process(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		p.log().WithError(err).Warn("bad email message")
		return Drop
	}

	subject, text, html, err := Prepare(&job)
	if err != nil {
		p.log().WithError(err).WithField("template", job.Template).Warn("render email failed")
		return Drop
	}

	timeout := p.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Sender.Send(c, job.To, subject, text, html); err != nil {
		p.log().WithError(err).WithField("template", job.Template).Error("send email failed")
		return Requeue
	}
	p.log().WithField("template", job.Template).Info("email sent")
	return Ack
}

func (p *Processor) log() *logrus.Logger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}
