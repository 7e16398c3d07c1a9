package nats

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/piresc/arbiter/internal/pkg/broker"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	natspkg "github.com/piresc/arbiter/internal/pkg/nats"
)

// NotifyHandler relays messages published on arbiter.notify.<channel> to the
// broker subscribers of <channel>. Every gateway instance subscribes, so each
// one reaches its own connections.
type NotifyHandler struct {
	natsClient *natspkg.Client
	broker     *broker.Broker
	subs       []*nats.Subscription
}

// NewNotifyHandler creates a new notification relay
func NewNotifyHandler(natsClient *natspkg.Client, b *broker.Broker) *NotifyHandler {
	return &NotifyHandler{
		natsClient: natsClient,
		broker:     b,
	}
}

// InitNATSConsumers subscribes to the notification subjects
func (h *NotifyHandler) InitNATSConsumers() error {
	sub, err := h.natsClient.Subscribe(constants.SubjectNotifyWildcard, func(msg *nats.Msg) {
		if err := h.handleNotification(msg.Subject, msg.Data); err != nil {
			logger.Warn("Dropping notification",
				logger.String("subject", msg.Subject),
				logger.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}
	h.subs = append(h.subs, sub)
	return nil
}

// Close drains the subscriptions
func (h *NotifyHandler) Close() error {
	var errs []error
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	h.subs = nil
	return errors.Join(errs...)
}

func (h *NotifyHandler) handleNotification(subject string, data []byte) error {
	channel := strings.TrimPrefix(subject, constants.SubjectNotifyPrefix)
	if channel == "" || channel == subject {
		return errors.New("no channel in subject")
	}

	var note models.Notification
	if err := json.Unmarshal(data, &note); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	if note.Action == "" {
		return errors.New("notification has no action")
	}

	payload, err := json.Marshal(models.Outcome{Action: note.Action, Data: note.Data})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	delivered := h.broker.Publish(channel, payload)
	logger.Debug("Relayed notification",
		logger.String("channel", channel),
		logger.String("action", note.Action),
		logger.Int("delivered", delivered))
	return nil
}
