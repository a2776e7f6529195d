package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/resolveit/helpdesk/internal/config"
)

// NotificationService delivers outbound notifications. Delivery is a
// logging stub; a real mailer or webhook sender slots in behind the same
// interface.
type NotificationService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendWebhook(ctx context.Context, event string, payload any) error
}

type logNotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService constructs the logging-backed implementation.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logNotificationService{logger: logger, cfg: cfg}
}

func (s *logNotificationService) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info("email notification",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}

func (s *logNotificationService) SendWebhook(_ context.Context, event string, payload any) error {
	if s.cfg.WebhookURL == "" {
		return nil
	}
	s.logger.Info("webhook notification",
		zap.String("url", s.cfg.WebhookURL),
		zap.String("event", event),
		zap.Any("payload", payload),
	)
	return nil
}
