package notify

import (
	"context"

	"go.uber.org/zap"
	"inkpost.backend/pkg/logger"
)

// Dispatcher delivers a rendered message to one recipient
type Dispatcher interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogDispatcher writes messages to the log instead of sending them.
// Used when no SMTP host is configured.
type LogDispatcher struct{}

// NewLogDispatcher creates a logging dispatcher
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Send logs that a message was due. The body carries live links and codes,
// so it is only written at debug level.
func (d *LogDispatcher) Send(ctx context.Context, recipient, subject, body string) error {
	logger.Info(ctx, "Notification not sent, no SMTP transport configured",
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	logger.Debug(ctx, "Undelivered notification body", zap.String("to", recipient), zap.String("body", body))
	return nil
}
