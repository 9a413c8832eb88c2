// Package delivery renders MFA and verification code messages and hands
// them to a transport.
package delivery

import (
	"context"
	"errors"
	"fmt"

	goCognito "github.com/MrEthical07/goCognito"
)

// Message is one rendered code message.
type Message struct {
	Medium      goCognito.DeliveryMedium
	Destination string
	Subject     string
	Body        string
}

// Sender transports a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Messages implements goCognito.CodeDelivery. EMAIL goes through Email, SMS
// through SMS.
type Messages struct {
	Email Sender
	SMS   Sender
}

var _ goCognito.CodeDelivery = (*Messages)(nil)

// ErrNoSender is returned when no transport is configured for the medium.
var ErrNoSender = errors.New("delivery: no sender for medium")

// NewMessages returns a Messages routing email and sms to the given senders.
func NewMessages(email, sms Sender) *Messages {
	return &Messages{Email: email, SMS: sms}
}

// Deliver renders req and sends it.
func (m *Messages) Deliver(ctx context.Context, req goCognito.DeliveryRequest) error {
	var sender Sender
	switch req.Details.DeliveryMedium {
	case goCognito.DeliveryMediumEmail:
		sender = m.Email
	case goCognito.DeliveryMediumSMS:
		sender = m.SMS
	}
	if sender == nil {
		return fmt.Errorf("%w: %q", ErrNoSender, req.Details.DeliveryMedium)
	}
	return sender.Send(ctx, Render(req))
}

// Render builds the message text for req.
func Render(req goCognito.DeliveryRequest) Message {
	var subject, body string
	switch req.Source {
	case goCognito.DeliverySourceAuthentication:
		subject = "Your authentication code"
		body = fmt.Sprintf("Your authentication code is %s.", req.Code)
	case goCognito.DeliverySourceUpdateUserAttribute, goCognito.DeliverySourceVerifyUserAttribute:
		subject = "Your verification code"
		body = fmt.Sprintf("Your verification code for %s is %s.", req.Details.AttributeName, req.Code)
	default:
		subject = "Your code"
		body = fmt.Sprintf("Your code is %s.", req.Code)
	}
	return Message{
		Medium:      req.Details.DeliveryMedium,
		Destination: req.Details.Destination,
		Subject:     subject,
		Body:        body,
	}
}
