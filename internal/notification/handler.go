package notification

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/mealcart/mealcart/internal/config"
	"github.com/mealcart/mealcart/internal/httpclient"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/pubsub"
	pubsubRouter "github.com/mealcart/mealcart/internal/pubsub/router"
	"github.com/mealcart/mealcart/internal/types"
)

// Handler consumes the dispatch topic and delivers notification events
// to the configured endpoint. Delivery retries are governed by the
// router middleware; the ledger is never involved.
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

type handler struct {
	pubSub pubsub.PubSub
	config *config.NotificationConfig
	client httpclient.Client
	logger *logger.Logger
}

// NewHandler creates a new notification handler
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	logger *logger.Logger,
) (Handler, error) {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Notification,
		client: client,
		logger: logger,
	}, nil
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"notification_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

// processMessage delivers a single notification event
func (h *handler) processMessage(msg *message.Message) error {
	ctx := msg.Context()

	var event types.NotificationEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal notification event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil // Don't retry on unmarshal errors
	}

	ctx = context.WithValue(ctx, types.CtxUserID, event.UserID)

	return h.deliver(ctx, &event, msg.UUID)
}

func (h *handler) deliver(ctx context.Context, event *types.NotificationEvent, messageUUID string) error {
	if !h.config.Enabled || h.config.Endpoint == "" {
		h.logger.Debugw("notification delivery disabled, dropping event",
			"event_name", event.EventName,
			"message_uuid", messageUUID,
		)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req := &httpclient.Request{
		Method:  http.MethodPost,
		URL:     h.config.Endpoint,
		Headers: h.config.Headers,
		Body:    body,
	}

	resp, err := h.client.Send(ctx, req)
	if err != nil {
		h.logger.Errorw("failed to deliver notification",
			"error", err,
			"event_name", event.EventName,
			"message_uuid", messageUUID,
		)
		return err
	}

	h.logger.Infow("notification delivered",
		"event_name", event.EventName,
		"user_id", event.UserID,
		"status_code", resp.StatusCode,
	)
	return nil
}
