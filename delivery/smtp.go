package delivery

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds SMTP settings for email delivery.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// Validate checks that the settings are usable.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return errors.New("missing smtp host")
	}
	if c.Port == 0 {
		return errors.New("missing smtp port")
	}
	if c.From == "" {
		return errors.New("missing smtp from address")
	}
	return nil
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends email messages over SMTP.
type SMTPSender struct {
	from   string
	dialer mailDialer
}

// NewSMTPSender returns a sender for cfg.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if msg.Destination == "" {
		return errors.New("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Destination)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
