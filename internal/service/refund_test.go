package service

import (
	"sync"
	"testing"

	"github.com/mealcart/mealcart/internal/domain/order"
	"github.com/mealcart/mealcart/internal/domain/payment"
	"github.com/mealcart/mealcart/internal/domain/payout"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/testutil"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RefundServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       RefundService
	walletService WalletService
}

func TestRefundService(t *testing.T) {
	suite.Run(t, new(RefundServiceSuite))
}

func (s *RefundServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		WalletRepo:  s.GetStores().WalletRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		PayoutRepo:  s.GetStores().PayoutRepo,
		OrderRepo:   s.GetStores().OrderRepo,
		Notifier:    s.GetNotifier(),
	}
	s.service = NewRefundService(params)
	s.walletService = NewWalletService(params)
}

func (s *RefundServiceSuite) createOrder(id string, total int64) *order.Order {
	o := &order.Order{
		ID:             id,
		UserID:         "user-1",
		VendorID:       "vendor-1",
		Total:          decimal.NewFromInt(total),
		PayoutEligible: true,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().OrderRepo.CreateOrder(s.GetContext(), o))
	return o
}

func (s *RefundServiceSuite) createPayment(destType types.PaymentDestinationType, destID string, amount int64, status types.PaymentStatus) *payment.Payment {
	p := &payment.Payment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		UserID:          "user-1",
		DestinationType: destType,
		DestinationID:   destID,
		Amount:          decimal.NewFromInt(amount),
		PaymentStatus:   status,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PaymentRepo.Create(s.GetContext(), p))
	return p
}

func (s *RefundServiceSuite) createPayout(orderID string, amount int64, status types.PayoutStatus) *payout.Payout {
	p := &payout.Payout{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_VENDOR_PAYOUT),
		VendorID:     "vendor-1",
		OrderID:      orderID,
		Amount:       decimal.NewFromInt(amount),
		PayoutStatus: status,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PayoutRepo.Create(s.GetContext(), p))
	return p
}

// debitForOrder spends wallet money against the order, seeding the
// wallet first so the debit succeeds
func (s *RefundServiceSuite) debitForOrder(orderID string, amount int64, reference string) {
	_, err := s.walletService.CreditWallet(s.GetContext(), &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(amount),
		SourceType: types.TransactionSourceAdminAdjustment,
		SourceID:   "seed",
		Reference:  "seed-" + reference,
	})
	s.NoError(err)
	_, err = s.walletService.DebitWallet(s.GetContext(), &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(amount),
		SourceType: types.TransactionSourceOrderPayment,
		SourceID:   orderID,
		Reference:  reference,
	})
	s.NoError(err)
}

func (s *RefundServiceSuite) TestRefundOrderReconcilesWalletAndPayment() {
	o := s.createOrder("ord-1", 5000)
	s.debitForOrder(o.ID, 2000, "pay-wallet")
	pay := s.createPayment(types.PaymentDestinationTypeOrder, o.ID, 3000, types.PaymentStatusCompleted)
	scheduled := s.createPayout(o.ID, 4500, types.PayoutStatusScheduled)

	resp, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.False(resp.AlreadyRefunded)
	s.True(resp.Amount.Equal(decimal.NewFromInt(5000)))

	w, err := s.walletService.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(5000)))

	refreshed, err := s.GetStores().OrderRepo.GetOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.False(refreshed.PayoutEligible)

	paid, err := s.GetStores().PaymentRepo.Get(s.GetContext(), pay.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusRefunded, paid.PaymentStatus)

	cancelled, err := s.GetStores().PayoutRepo.Get(s.GetContext(), scheduled.ID)
	s.NoError(err)
	s.Equal(types.PayoutStatusFailed, cancelled.PayoutStatus)
}

func (s *RefundServiceSuite) TestRefundOrderReplay() {
	o := s.createOrder("ord-1", 5000)
	s.debitForOrder(o.ID, 2000, "pay-wallet")
	s.createPayment(types.PaymentDestinationTypeOrder, o.ID, 3000, types.PaymentStatusCompleted)

	first, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.True(first.Amount.Equal(decimal.NewFromInt(5000)))

	replay, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.True(replay.AlreadyRefunded)
	s.True(replay.Amount.Equal(decimal.NewFromInt(5000)))

	w, err := s.walletService.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(5000)), "replay must not credit twice")
}

func (s *RefundServiceSuite) TestRefundOrderIgnoresPendingPayment() {
	o := s.createOrder("ord-1", 4500)
	s.debitForOrder(o.ID, 1500, "pay-wallet")
	pay := s.createPayment(types.PaymentDestinationTypeOrder, o.ID, 3000, types.PaymentStatusPending)

	resp, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.True(resp.Amount.Equal(decimal.NewFromInt(1500)), "pending payments never collected money")

	unchanged, err := s.GetStores().PaymentRepo.Get(s.GetContext(), pay.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, unchanged.PaymentStatus)
}

func (s *RefundServiceSuite) TestRefundOrderLeavesPaidPayoutsAlone() {
	o := s.createOrder("ord-1", 5000)
	s.debitForOrder(o.ID, 5000, "pay-wallet")
	paid := s.createPayout(o.ID, 4500, types.PayoutStatusPaid)
	processing := s.createPayout(o.ID, 300, types.PayoutStatusProcessing)

	_, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)

	untouched, err := s.GetStores().PayoutRepo.Get(s.GetContext(), paid.ID)
	s.NoError(err)
	s.Equal(types.PayoutStatusPaid, untouched.PayoutStatus)

	cancelled, err := s.GetStores().PayoutRepo.Get(s.GetContext(), processing.ID)
	s.NoError(err)
	s.Equal(types.PayoutStatusFailed, cancelled.PayoutStatus)
}

func (s *RefundServiceSuite) TestRefundOrderNothingMoved() {
	o := s.createOrder("ord-1", 5000)

	resp, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.False(resp.AlreadyRefunded)
	s.True(resp.Amount.IsZero())

	// no refund credit was written, so a later refund still reconciles
	_, err = s.GetStores().WalletRepo.GetRefundTransaction(s.GetContext(), o.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RefundServiceSuite) TestRefundOrderUnknownOrder() {
	_, err := s.service.RefundOrder(s.GetContext(), "missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *RefundServiceSuite) TestConcurrentRefundCreditsOnce() {
	o := s.createOrder("ord-1", 5000)
	s.debitForOrder(o.ID, 2000, "pay-wallet")
	s.createPayment(types.PaymentDestinationTypeOrder, o.ID, 3000, types.PaymentStatusCompleted)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.service.RefundOrder(s.GetContext(), o.ID)
		}()
	}
	wg.Wait()

	w, err := s.walletService.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(5000)))
}

func (s *RefundServiceSuite) TestRefundPackageOrder() {
	p := &order.PackageOrder{
		ID:             "pord-1",
		UserID:         "user-1",
		Total:          decimal.NewFromInt(8000),
		PayoutEligible: true,
		BaseModel:      types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().OrderRepo.CreatePackageOrder(s.GetContext(), p))

	_, err := s.walletService.CreditWallet(s.GetContext(), &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(3000),
		SourceType: types.TransactionSourceAdminAdjustment,
		SourceID:   "seed",
		Reference:  "seed-pkg",
	})
	s.NoError(err)
	_, err = s.walletService.DebitWallet(s.GetContext(), &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(3000),
		SourceType: types.TransactionSourcePackagePayment,
		SourceID:   p.ID,
		Reference:  "pkg-wallet",
	})
	s.NoError(err)
	s.createPayment(types.PaymentDestinationTypePackageOrder, p.ID, 5000, types.PaymentStatusCompleted)
	stray := s.createPayout(p.ID, 1000, types.PayoutStatusScheduled)

	resp, err := s.service.RefundPackageOrder(s.GetContext(), p.ID)
	s.NoError(err)
	s.True(resp.Amount.Equal(decimal.NewFromInt(8000)))

	// payout cancellation runs on both refund paths
	cancelled, err := s.GetStores().PayoutRepo.Get(s.GetContext(), stray.ID)
	s.NoError(err)
	s.Equal(types.PayoutStatusFailed, cancelled.PayoutStatus)

	refreshed, err := s.GetStores().OrderRepo.GetPackageOrder(s.GetContext(), p.ID)
	s.NoError(err)
	s.False(refreshed.PayoutEligible)

	w, err := s.walletService.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(8000)))
}

func (s *RefundServiceSuite) TestRefundPublishesNotification() {
	o := s.createOrder("ord-1", 5000)
	s.debitForOrder(o.ID, 2000, "pay-wallet")

	before := len(s.GetPubSub().Messages(s.GetConfig().Notification.Topic))
	_, err := s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)

	after := len(s.GetPubSub().Messages(s.GetConfig().Notification.Topic))
	s.Equal(before+1, after)

	_, err = s.service.RefundOrder(s.GetContext(), o.ID)
	s.NoError(err)
	s.Equal(after, len(s.GetPubSub().Messages(s.GetConfig().Notification.Topic)), "replays must not publish")
}
