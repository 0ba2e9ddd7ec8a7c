package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService delivers transactional mail through Resend. Sends are queued
// on a buffered channel and drained by a background worker so callers on the
// request path never wait on the provider.
type EmailService struct {
	client     *resend.Client
	fromEmail  string
	appName    string
	codeExpiry time.Duration
	isDev      bool

	queue chan outboundEmail
	wg    sync.WaitGroup
	once  sync.Once
}

type outboundEmail struct {
	kind    string
	to      string
	subject string
	body    string
}

const (
	emailQueueSize   = 64
	emailSendRetries = 3
)

func NewEmailService(apiKey, fromEmail, appName string, codeExpiry time.Duration, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	s := &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		appName:    appName,
		codeExpiry: codeExpiry,
		isDev:      isDev,
		queue:      make(chan outboundEmail, emailQueueSize),
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

// QueueVerificationCode enqueues the 6-digit verification email. It never
// blocks: if the queue is full the message is dropped and the user can
// request a resend.
func (s *EmailService) QueueVerificationCode(email, name, code string) {
	subject, body := verificationCodeEmailTemplate(name, code, s.appName, s.codeExpiry)
	s.enqueue(outboundEmail{kind: "verification_code", to: email, subject: subject, body: body})
}

// QueueWelcome enqueues the post-verification welcome email.
func (s *EmailService) QueueWelcome(email, name string) {
	subject, body := welcomeEmailTemplate(name, s.appName)
	s.enqueue(outboundEmail{kind: "welcome", to: email, subject: subject, body: body})
}

func (s *EmailService) enqueue(msg outboundEmail) {
	select {
	case s.queue <- msg:
	default:
		slog.Warn("email queue full, dropping message", "type", msg.kind, "to", msg.to)
	}
}

// Close stops accepting new mail and waits for the worker to drain the queue.
func (s *EmailService) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *EmailService) worker() {
	defer s.wg.Done()

	for msg := range s.queue {
		err := s.sendWithRetry(msg)
		if err != nil {
			slog.Error("failed to send email", "error", err, "type", msg.kind, "to", msg.to)
		}
	}
}

func (s *EmailService) sendWithRetry(msg outboundEmail) error {
	var err error
	for attempt := 1; attempt <= emailSendRetries; attempt++ {
		err = s.send(msg)
		if err == nil {
			return nil
		}
		if attempt < emailSendRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}
	return err
}

func (s *EmailService) send(msg outboundEmail) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", msg.kind, "to", msg.to, "subject", msg.subject, "body", msg.body)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{msg.to},
		Subject: msg.subject,
		Text:    msg.body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", msg.kind, "to", msg.to)
	}
	return err
}
