package service

import (
	"github.com/mealcart/mealcart/internal/config"
	"github.com/mealcart/mealcart/internal/domain/order"
	"github.com/mealcart/mealcart/internal/domain/payment"
	"github.com/mealcart/mealcart/internal/domain/payout"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	"github.com/mealcart/mealcart/internal/httpclient"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/notification"
	"github.com/mealcart/mealcart/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	WalletRepo  wallet.Repository
	PaymentRepo payment.Repository
	PayoutRepo  payout.Repository
	OrderRepo   order.Repository

	// Publishers
	Notifier notification.Publisher

	// http client
	Client httpclient.Client
}

// NewServiceParams builds the common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	walletRepo wallet.Repository,
	paymentRepo payment.Repository,
	payoutRepo payout.Repository,
	orderRepo order.Repository,
	notifier notification.Publisher,
	client httpclient.Client,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		DB:          db,
		WalletRepo:  walletRepo,
		PaymentRepo: paymentRepo,
		PayoutRepo:  payoutRepo,
		OrderRepo:   orderRepo,
		Notifier:    notifier,
		Client:      client,
	}
}
