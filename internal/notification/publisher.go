package notification

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/mealcart/mealcart/internal/config"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/pubsub"
	"github.com/mealcart/mealcart/internal/types"
)

// Publisher produces notification events onto the dispatch topic.
// Callers invoke it only after their own transaction has committed.
type Publisher interface {
	PublishEvent(ctx context.Context, event *types.NotificationEvent) error
	Close() error
}

type notificationPublisher struct {
	pubSub pubsub.PubSub
	config *config.NotificationConfig
	logger *logger.Logger
}

// NewPublisher creates a new notification publisher
func NewPublisher(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) (Publisher, error) {
	return &notificationPublisher{
		pubSub: pubSub,
		config: &cfg.Notification,
		logger: logger,
	}, nil
}

func (p *notificationPublisher) PublishEvent(ctx context.Context, event *types.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	messageID := event.ID
	if messageID == "" {
		messageID = watermill.NewUUID()
	}

	msg := message.NewMessage(messageID, payload)
	msg.Metadata.Set("user_id", event.UserID)

	p.logger.Debugw("publishing notification event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"user_id", event.UserID,
		"topic", p.config.Topic,
	)

	if err := p.pubSub.Publish(ctx, p.config.Topic, msg); err != nil {
		p.logger.Errorw("failed to publish notification event",
			"error", err,
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return err
	}
	return nil
}

// Close closes the publisher
func (p *notificationPublisher) Close() error {
	return p.pubSub.Close()
}
