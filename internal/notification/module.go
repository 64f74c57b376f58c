package notification

import (
	"github.com/mealcart/mealcart/internal/config"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/pubsub"
	"github.com/mealcart/mealcart/internal/pubsub/memory"
	"github.com/mealcart/mealcart/internal/types"
	"go.uber.org/fx"
)

// Module provides all notification-related dependencies
var Module = fx.Options(
	fx.Provide(
		providePubSub,
		NewPublisher,
		NewHandler,
	),
)

func providePubSub(
	cfg *config.Configuration,
	logger *logger.Logger,
) pubsub.PubSub {
	switch cfg.Notification.PubSub {
	case types.MemoryPubSub:
		return memory.NewPubSub(cfg, logger)
	}
	panic("unsupported pubsub type")
}
