package testutil

import (
	"context"
	"time"

	"github.com/mealcart/mealcart/internal/config"
	"github.com/mealcart/mealcart/internal/domain/order"
	"github.com/mealcart/mealcart/internal/domain/payment"
	"github.com/mealcart/mealcart/internal/domain/payout"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/notification"
	"github.com/mealcart/mealcart/internal/postgres"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/mealcart/mealcart/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	WalletRepo  wallet.Repository
	PaymentRepo payment.Repository
	PayoutRepo  payout.Repository
	OrderRepo   order.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	stores   Stores
	db       postgres.IClient
	logger   *logger.Logger
	config   *config.Configuration
	notifier notification.Publisher
	pubsub   *InMemoryPubSub
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Notification: config.NotificationConfig{
			Enabled: true,
			Topic:   "notifications",
			PubSub:  types.MemoryPubSub,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateShortIDWithPrefix(types.UUID_PREFIX_REQUEST))
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		WalletRepo:  NewInMemoryWalletStore(),
		PaymentRepo: NewInMemoryPaymentStore(),
		PayoutRepo:  NewInMemoryPayoutStore(),
		OrderRepo:   NewInMemoryOrderStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.pubsub = NewInMemoryPubSub()
	notifier, err := notification.NewPublisher(s.pubsub, s.config, s.logger)
	if err != nil {
		s.T().Fatalf("failed to create notification publisher: %v", err)
	}
	s.notifier = notifier
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.WalletRepo.(*InMemoryWalletStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.PayoutRepo.(*InMemoryPayoutStore).Clear()
	s.stores.OrderRepo.(*InMemoryOrderStore).Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNotifier returns the notification publisher
func (s *BaseServiceTestSuite) GetNotifier() notification.Publisher {
	return s.notifier
}

// GetPubSub returns the in-memory pubsub backing the notifier
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

// GetNow returns the time when the current test started
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
