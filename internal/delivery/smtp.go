package delivery

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender mails the code as an HTML message.
type SMTPSender struct {
	cfg      config.SMTPConfig
	lifetime time.Duration
	server   string
	auth     smtp.Auth

	sendMail sendMailFunc
}

func NewSMTPSender(cfg config.SMTPConfig, lifetime time.Duration) *SMTPSender {
	s := &SMTPSender{
		cfg:      cfg,
		lifetime: lifetime,
		server:   cfg.Host + ":" + cfg.Port,
		sendMail: smtp.SendMail,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// IsConfigured reports whether host, port and sender address are set.
func (s *SMTPSender) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Port != "" && s.cfg.From != ""
}

func (s *SMTPSender) SendOtp(ctx context.Context, to, code string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("%w: smtp not configured", common.ErrDeliveryFailed)
	}

	msg, err := s.buildMessage(to, code)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}

	// net/smtp has no context support; abandon the wait on cancellation
	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.server, s.auth, s.cfg.From, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, ctx.Err())
	}
}

type otpMailData struct {
	AppName string
	Code    string
	Minutes int
}

func (s *SMTPSender) buildMessage(to, code string) ([]byte, error) {
	appName := s.cfg.FromName
	if appName == "" {
		appName = "Mindmap"
	}

	var body bytes.Buffer
	err := otpTemplate.Execute(&body, otpMailData{
		AppName: appName,
		Code:    code,
		Minutes: int(s.lifetime.Minutes()),
	})
	if err != nil {
		return nil, fmt.Errorf("render otp template: %w", err)
	}

	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s password reset code\r\n", appName)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	msg.WriteString(strings.ReplaceAll(body.String(), "\n", "\r\n"))
	fmt.Fprintf(&msg, "\r\n")
	return msg.Bytes(), nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.AppName}} password reset</title>
</head>
<body>
    <p>Hello,</p>
    <p>You asked to reset your {{.AppName}} password.</p>
    <p>Your one-time code is: <strong>{{.Code}}</strong></p>
    <p>The code is valid for {{.Minutes}} minutes. If you did not ask for this, ignore this email.</p>
    <p>{{.AppName}}</p>
</body>
</html>`))
