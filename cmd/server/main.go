package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/mealcart/mealcart/internal/api"
	v1 "github.com/mealcart/mealcart/internal/api/v1"
	"github.com/mealcart/mealcart/internal/config"
	"github.com/mealcart/mealcart/internal/httpclient"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/notification"
	"github.com/mealcart/mealcart/internal/postgres"
	pubsubRouter "github.com/mealcart/mealcart/internal/pubsub/router"
	"github.com/mealcart/mealcart/internal/repository"
	"github.com/mealcart/mealcart/internal/service"
	"github.com/mealcart/mealcart/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			providePostgresClient,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Repositories
			repository.NewWalletRepository,
			repository.NewPaymentRepository,
			repository.NewPayoutRepository,
			repository.NewOrderRepository,

			// PubSub
			pubsubRouter.NewRouter,
		),
	)

	// Notification module (must be initialised before services)
	opts = append(opts, notification.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewWalletService,
			service.NewRefundService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startAPIServer,
			startMessageRouter,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

// provideHandlers depends on the validator so request DTO validation is
// initialised before the first request arrives.
func provideHandlers(
	_ *govalidator.Validate,
	logger *logger.Logger,
	walletService service.WalletService,
	refundService service.RefundService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Wallet:  v1.NewWalletHandler(walletService, logger),
		Webhook: v1.NewWebhookHandler(walletService, logger),
		Refund:  v1.NewRefundHandler(refundService, logger),
	}
}

func provideRouter(handlers api.Handlers) *gin.Engine {
	return api.NewRouter(handlers)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	handler notification.Handler,
	logger *logger.Logger,
) {
	// Register handlers before starting the router
	handler.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting message router")
			go func() {
				if err := router.Run(); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			return router.Close()
		},
	})
}
