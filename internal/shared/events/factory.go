package events

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a backend.
type Options struct {
	Backend          string
	KafkaBrokers     string
	KafkaTopic       string
	RabbitMQURL      string
	RabbitMQExchange string
	SQSQueueURL      string
	AWSRegion        string
}

// Open returns the publisher named by opts.Backend (kafka, rabbitmq, sqs, log
// or none).
func Open(ctx context.Context, opts Options) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "kafka":
		var brokers []string
		for _, b := range strings.Split(opts.KafkaBrokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		return NewKafkaPublisher(brokers, opts.KafkaTopic)
	case "rabbitmq", "amqp":
		return NewRabbitPublisher(opts.RabbitMQURL, opts.RabbitMQExchange)
	case "sqs":
		return NewSQSPublisher(ctx, opts.AWSRegion, opts.SQSQueueURL)
	case "log", "none", "":
		return LogPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", opts.Backend)
	}
}
