package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Publisher fans announcements out to subscribers of a topic.
type Publisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type topicPublisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher returns a Publisher for topicARN. A non-empty endpoint
// (LocalStack) overrides the default.
func NewPublisher(awsCfg aws.Config, endpoint, topicARN string) Publisher {
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &topicPublisher{client: client, topicARN: topicARN}
}

func (p *topicPublisher) Publish(ctx context.Context, subject, message string) error {
	// SNS subjects are limited to 100 characters.
	if len(subject) > 100 {
		subject = subject[:100]
	}
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
