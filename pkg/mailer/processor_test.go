package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	err  error
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func body(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcess_TemplateJob(t *testing.T) {
	s := &fakeSender{}
	p := NewProcessor(s, quietLogger())

	job := EmailJob{
		To:       "juan@example.com",
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData("Acme", "Juan", "juan@example.com"),
	}
	assert.Equal(t, Ack, p.Process(context.Background(), body(t, job)))

	require.Len(t, s.sent, 1)
	assert.Equal(t, "juan@example.com", s.sent[0].to)
	assert.Equal(t, "Welcome to Acme", s.sent[0].subject)
	assert.Contains(t, s.sent[0].html, "Juan")
}

func TestProcess_RawJob(t *testing.T) {
	s := &fakeSender{}
	p := NewProcessor(s, quietLogger())

	job := EmailJob{To: "a@b.co", Subject: "hi", Text: "hello"}
	assert.Equal(t, Ack, p.Process(context.Background(), body(t, job)))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "hello", s.sent[0].text)
}

func TestProcess_DropsUnusableMessages(t *testing.T) {
	s := &fakeSender{}
	p := NewProcessor(s, quietLogger())

	assert.Equal(t, Drop, p.Process(context.Background(), []byte("{nope")))
	assert.Equal(t, Drop, p.Process(context.Background(), body(t, EmailJob{Template: mailtpl.Welcome})))
	assert.Equal(t, Drop, p.Process(context.Background(), body(t, EmailJob{To: "a@b.co", Template: "verify_email"})))
	assert.Equal(t, Drop, p.Process(context.Background(), body(t, EmailJob{To: "a@b.co"})))
	assert.Empty(t, s.sent)
}

func TestProcess_RequeuesSendFailure(t *testing.T) {
	p := NewProcessor(&fakeSender{err: errors.New("mailgun down")}, quietLogger())

	job := EmailJob{To: "a@b.co", Subject: "hi", Text: "hello"}
	assert.Equal(t, Requeue, p.Process(context.Background(), body(t, job)))
}

func TestEnsureRecipient(t *testing.T) {
	job := EmailJob{To: "a@b.co", Data: map[string]any{"Email": ""}}
	job.EnsureRecipient()
	assert.Equal(t, "a@b.co", job.Data["Email"])
	assert.Equal(t, "a@b.co", job.Data["RecipientEmail"])
}
