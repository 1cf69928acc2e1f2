package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/NomadCrew/feedback-desk/config"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

// EmailSender is the part of the Resend client the email service uses.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config   *config.EmailConfig
	sender   EmailSender
	metrics  *EmailMetrics
	template *template.Template
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress, "apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 0))
	client := resend.NewClient(cfg.ResendAPIKey)
	return NewEmailServiceWithSender(cfg, client.Emails, reg)
}

// NewEmailServiceWithSender wires an explicit sender, used by tests.
func NewEmailServiceWithSender(cfg *config.EmailConfig, sender EmailSender, reg prometheus.Registerer) *EmailService {
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:   cfg,
		sender:   sender,
		metrics:  metrics,
		template: template.Must(template.New("confirmation").Parse(confirmationEmailTemplate)),
	}
}

// SendFeedbackConfirmation thanks the submitter for an accepted entry.
func (s *EmailService) SendFeedbackConfirmation(ctx context.Context, fb *types.Feedback) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if fb == nil || fb.Email == "" {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("feedback has no recipient")
	}

	var htmlContent bytes.Buffer
	if err := s.template.Execute(&htmlContent, fb); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := "We received your feedback: " + fb.Subject
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{fb.Email},
		Subject: subject,
		Html:    htmlContent.String(),
	}

	if _, err := s.sender.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(fb.Email),
			"feedback_id", fb.ID)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"to", logger.MaskEmail(fb.Email),
		"feedback_id", fb.ID)

	return nil
}

const confirmationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Thank you for your feedback</title>
    <style>
        body {
            font-family: 'sans-serif';
            background-color: #f7f7f7;
            color: #333333;
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 600px;
            margin: 20px auto;
            background-color: #ffffff;
            padding: 30px;
            border-radius: 12px;
        }
        .quote {
            border-left: 4px solid #2563eb;
            padding-left: 12px;
            color: #555555;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>Thanks, {{.Name}}!</h1>
        <p>We received your feedback about <strong>{{.Subject}}</strong> and rated {{.Rating}} out of 5.</p>
        <p class="quote">{{.Message}}</p>
        <p>Our team reviews every entry. Your reference is <code>{{.ID}}</code>.</p>
    </div>
</body>
</html>`
