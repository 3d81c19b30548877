package notify

import (
	"context"
	"log/slog"

	"github.com/SixTanDev/BTG/internal/domain"
)

// Sender delivers a message to one recipient on one channel.
type Sender interface {
	Channel() string
	Send(ctx context.Context, to, message string) error
}

// LogEmailSender writes email deliveries to the log. Stands in for a
// real provider (SMTP, SendGrid) behind the same interface.
type LogEmailSender struct {
	log *slog.Logger
}

// NewLogEmailSender returns a new LogEmailSender.
func NewLogEmailSender(log *slog.Logger) *LogEmailSender {
	return &LogEmailSender{log: log}
}

func (s *LogEmailSender) Channel() string { return domain.ChannelEmail }

func (s *LogEmailSender) Send(ctx context.Context, to, message string) error {
	s.log.InfoContext(ctx, "sending email", "to", to, "message", message)
	return nil
}

// LogSMSSender writes SMS deliveries to the log. Stands in for a real
// provider (Twilio) behind the same interface.
type LogSMSSender struct {
	log *slog.Logger
}

// NewLogSMSSender returns a new LogSMSSender.
func NewLogSMSSender(log *slog.Logger) *LogSMSSender {
	return &LogSMSSender{log: log}
}

func (s *LogSMSSender) Channel() string { return domain.ChannelSMS }

func (s *LogSMSSender) Send(ctx context.Context, to, message string) error {
	s.log.InfoContext(ctx, "sending sms", "to", to, "message", message)
	return nil
}
