package messaging

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/customer-intake-api/internal/config"
)

// publisher is the subset of the SNS client used here.
type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender sends plain SMS via AWS SNS. SNS has no server-side templates, so
// the message body is rendered locally from format and the first variable.
type SNSSender struct {
	client publisher
	format string
}

func NewSNSSender(cfg *config.Config) (*SNSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &SNSSender{client: sns.NewFromConfig(awsCfg), format: cfg.OTPMessageFormat}, nil
}

func (s *SNSSender) Send(ctx context.Context, msg Message) error {
	body := fmt.Sprintf(s.format, msg.Variables["1"])
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: &msg.To,
		Message:     &body,
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
