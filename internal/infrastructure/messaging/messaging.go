// Package messaging delivers OTP codes through an external provider.
package messaging

import (
	"context"
	"fmt"

	"github.com/customer-intake-api/internal/config"
)

// Message is a templated outbound message with positional variables
// ("1" is the first placeholder of the template).
type Message struct {
	To         string
	TemplateID string
	Variables  map[string]string
}

// Sender dispatches a templated message to a normalized phone number.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// OTPMessage builds the single-variable template message carrying a code.
func OTPMessage(to, templateID, code string) Message {
	return Message{To: to, TemplateID: templateID, Variables: map[string]string{"1": code}}
}

// New selects the provider named by cfg.MessagingProvider.
func New(cfg *config.Config) (Sender, error) {
	switch cfg.MessagingProvider {
	case "twilio", "":
		return NewTwilioSender(cfg), nil
	case "sns":
		return NewSNSSender(cfg)
	case "log":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown messaging provider %q", cfg.MessagingProvider)
	}
}
