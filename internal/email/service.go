package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"foodhub/internal/domain"
)

// Sender delivers customer mail. Callers dispatch it after their write
// committed and only log what it returns.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, to string, order domain.Order) error
	SendStatusUpdate(ctx context.Context, to string, order domain.Order) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPService struct {
	addr     string
	from     string
	sendMail sendMailFunc
}

func NewSMTPService(host string, port int, from string) *SMTPService {
	return &SMTPService{
		addr:     fmt.Sprintf("%s:%d", host, port),
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPService) SendOrderConfirmation(ctx context.Context, to string, order domain.Order) error {
	body, err := BuildOrderConfirmationBody(order)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Siparişiniz alındı (#%d)", order.ID)
	return s.send(ctx, to, subject, body)
}

func (s *SMTPService) SendStatusUpdate(ctx context.Context, to string, order domain.Order) error {
	body, err := BuildStatusUpdateBody(order)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Sipariş #%d: %s", order.ID, StatusLabel(order.Status))
	return s.send(ctx, to, subject, body)
}

func (s *SMTPService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	if err := s.sendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// LogSender stands in when SMTP is disabled; it records what would have
// been sent.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendOrderConfirmation(ctx context.Context, to string, order domain.Order) error {
	s.logger.Info("mail disabled, order confirmation skipped", zap.String("to", to), zap.Uint("orderId", order.ID))
	return nil
}

func (s *LogSender) SendStatusUpdate(ctx context.Context, to string, order domain.Order) error {
	s.logger.Info("mail disabled, status update skipped", zap.String("to", to), zap.Uint("orderId", order.ID), zap.String("status", string(order.Status)))
	return nil
}
