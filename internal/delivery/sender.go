// Package delivery sends password-reset codes to account holders.
package delivery

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/config"
	"github.com/dmitrijs2005/mindmap/internal/logging"
)

// Sender delivers a one-time code. Failures wrap common.ErrDeliveryFailed
// and are not retried.
type Sender interface {
	SendOtp(ctx context.Context, to, code string) error
}

// New returns an SMTPSender when SMTP is configured, otherwise a LogSender.
func New(cfg config.SMTPConfig, lifetime time.Duration, logger logging.Logger) Sender {
	s := NewSMTPSender(cfg, lifetime)
	if s.IsConfigured() {
		return s
	}
	return NewLogSender(logger)
}

// LogSender writes the code to the log. It is used when no mail server is
// configured. The key is reset_code because "code" is redacted by the
// project loggers.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("component", "delivery")}
}

func (s *LogSender) SendOtp(ctx context.Context, to, code string) error {
	s.logger.Warn(ctx, "smtp not configured, password reset code logged", "to", to, "reset_code", code)
	return nil
}
