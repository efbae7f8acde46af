package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes messages to the log instead of delivering them.
// It is the development default when no relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail_not_delivered",
		zap.String("component", "mail"),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
