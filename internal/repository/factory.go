package repository

import (
	"github.com/mealcart/mealcart/internal/domain/order"
	"github.com/mealcart/mealcart/internal/domain/payment"
	"github.com/mealcart/mealcart/internal/domain/payout"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/postgres"
	postgresRepo "github.com/mealcart/mealcart/internal/repository/postgres"
)

func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return postgresRepo.NewWalletRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewPayoutRepository(db *postgres.DB, logger *logger.Logger) payout.Repository {
	return postgresRepo.NewPayoutRepository(db, logger)
}

func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger)
}
