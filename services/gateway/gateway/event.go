package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// publisher is satisfied by *nsq.Producer
type publisher interface {
	PublishAsync(topic string, message interface{}) error
}

// NSQEventPublisher emits action audit events. A nil producer disables it.
type NSQEventPublisher struct {
	producer publisher
}

// NewNSQEventPublisher creates an event publisher; pass nil when NSQ is disabled
func NewNSQEventPublisher(producer publisher) *NSQEventPublisher {
	return &NSQEventPublisher{producer: producer}
}

// PublishActionCompleted queues event on the action completed topic
func (p *NSQEventPublisher) PublishActionCompleted(_ context.Context, event *models.ActionEvent) error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.PublishAsync(constants.TopicActionCompleted, event); err != nil {
		return fmt.Errorf("failed to publish action event: %w", err)
	}
	return nil
}
