package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mealcart/mealcart/internal/api/dto"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/testutil"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WalletServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WalletService
}

func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceSuite))
}

func (s *WalletServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewWalletService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		WalletRepo:  s.GetStores().WalletRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		PayoutRepo:  s.GetStores().PayoutRepo,
		OrderRepo:   s.GetStores().OrderRepo,
		Notifier:    s.GetNotifier(),
	})
}

func (s *WalletServiceSuite) creditOp(userID, reference string, amount int64) *wallet.Operation {
	return &wallet.Operation{
		UserID:     userID,
		Amount:     decimal.NewFromInt(amount),
		SourceType: types.TransactionSourceAdminAdjustment,
		SourceID:   "adj-1",
		Reference:  reference,
	}
}

func (s *WalletServiceSuite) TestGetOrCreateWallet() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.NotNil(w)
	s.Equal("user-1", w.UserID)
	s.True(w.Balance.IsZero())
	s.Equal(types.WalletStatusActive, w.WalletStatus)

	again, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.Equal(w.ID, again.ID)
}

func (s *WalletServiceSuite) TestGetOrCreateWalletRequiresUserID() {
	_, err := s.service.GetOrCreateWallet(s.GetContext(), "")
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *WalletServiceSuite) TestCreditWallet() {
	result, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "ref-1", 1000))
	s.NoError(err)
	s.False(result.AlreadyProcessed)
	s.Equal(types.TransactionTypeCredit, result.Transaction.Type)
	s.True(result.Transaction.Amount.Equal(decimal.NewFromInt(1000)))
	s.True(result.Transaction.BalanceBefore.IsZero())
	s.True(result.Transaction.BalanceAfter.Equal(decimal.NewFromInt(1000)))

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(1000)))
}

func (s *WalletServiceSuite) TestCreditWalletReplayReturnsSameTransaction() {
	first, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "ref-1", 1000))
	s.NoError(err)

	replay, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "ref-1", 1000))
	s.NoError(err)
	s.True(replay.AlreadyProcessed)
	s.Equal(first.Transaction.ID, replay.Transaction.ID)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(1000)))

	list, err := s.service.ListTransactions(s.GetContext(), &types.WalletTransactionFilter{WalletID: w.ID})
	s.NoError(err)
	s.Len(list.Items, 1)
}

func (s *WalletServiceSuite) TestDebitWalletInsufficientBalance() {
	_, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "ref-1", 5000))
	s.NoError(err)

	op := &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(3000),
		SourceType: types.TransactionSourceOrderPayment,
		SourceID:   "ord-1",
		Reference:  "debit-1",
	}
	result, err := s.service.DebitWallet(s.GetContext(), op)
	s.NoError(err)
	s.True(result.Transaction.BalanceAfter.Equal(decimal.NewFromInt(2000)))

	op2 := &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(3000),
		SourceType: types.TransactionSourceOrderPayment,
		SourceID:   "ord-2",
		Reference:  "debit-2",
	}
	_, err = s.service.DebitWallet(s.GetContext(), op2)
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(2000)))
}

func (s *WalletServiceSuite) TestOperationRejectsNonPositiveAmount() {
	op := s.creditOp("user-1", "ref-1", 0)
	op.Type = types.TransactionTypeCredit
	_, err := s.service.ApplyOperation(s.GetContext(), op)
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))
}

func (s *WalletServiceSuite) TestOperationRequiresReference() {
	op := s.creditOp("user-1", "", 100)
	op.Type = types.TransactionTypeCredit
	_, err := s.service.ApplyOperation(s.GetContext(), op)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *WalletServiceSuite) TestConcurrentDebitsNeverOverdraw() {
	_, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "seed", 1000))
	s.NoError(err)

	var wg sync.WaitGroup
	results := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			op := &wallet.Operation{
				UserID:     "user-1",
				Amount:     decimal.NewFromInt(300),
				SourceType: types.TransactionSourceOrderPayment,
				SourceID:   "ord-1",
				Reference:  "debit-" + string(rune('a'+i)),
			}
			_, results[i] = s.service.DebitWallet(s.GetContext(), op)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientBalance(err))
		}
	}
	s.Equal(3, succeeded)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(100)))
	s.False(w.Balance.IsNegative())
}

func (s *WalletServiceSuite) TestBalanceMatchesLedger() {
	_, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "c1", 4000))
	s.NoError(err)
	_, err = s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "c2", 1500))
	s.NoError(err)
	_, err = s.service.DebitWallet(s.GetContext(), &wallet.Operation{
		UserID:     "user-1",
		Amount:     decimal.NewFromInt(2200),
		SourceType: types.TransactionSourceOrderPayment,
		SourceID:   "ord-1",
		Reference:  "d1",
	})
	s.NoError(err)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)

	list, err := s.service.ListTransactions(s.GetContext(), &types.WalletTransactionFilter{WalletID: w.ID})
	s.NoError(err)

	net := decimal.Zero
	for _, item := range list.Items {
		if item.Type == types.TransactionTypeCredit {
			net = net.Add(item.Amount)
		} else {
			net = net.Sub(item.Amount)
		}
	}
	s.True(w.Balance.Equal(net))
	s.True(w.Balance.Equal(decimal.NewFromInt(3300)))
}

func (s *WalletServiceSuite) TestListTransactionsNewestFirst() {
	_, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "c1", 100))
	s.NoError(err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "c2", 200))
	s.NoError(err)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)

	list, err := s.service.ListTransactions(s.GetContext(), &types.WalletTransactionFilter{WalletID: w.ID})
	s.NoError(err)
	s.Len(list.Items, 2)
	s.Equal("c2", list.Items[0].Reference)
	s.Equal("c1", list.Items[1].Reference)
}

func (s *WalletServiceSuite) TestCreditPublishesNotification() {
	_, err := s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "ref-1", 1000))
	s.NoError(err)

	msgs := s.GetPubSub().Messages(s.GetConfig().Notification.Topic)
	s.Len(msgs, 1)

	_, err = s.service.CreditWallet(s.GetContext(), s.creditOp("user-1", "ref-1", 1000))
	s.NoError(err)

	msgs = s.GetPubSub().Messages(s.GetConfig().Notification.Topic)
	s.Len(msgs, 1, "replays must not publish")
}

func (s *WalletServiceSuite) TestInitializeFunding() {
	resp, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)
	s.Equal(types.FundingStatusPending, resp.FundingStatus)
	s.True(resp.Amount.Equal(decimal.NewFromInt(2500)))

	_, err = s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *WalletServiceSuite) TestInitializeFundingRejectsNonPositiveAmount() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(-5),
		ProviderRef: "prov-1",
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))
}

func (s *WalletServiceSuite) TestCompleteFunding() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	paidAt := time.Now().UTC()
	resp, err := s.service.CompleteFunding(s.GetContext(), "prov-1", &paidAt)
	s.NoError(err)
	s.False(resp.AlreadyProcessed)
	s.Equal(types.FundingStatusCompleted, resp.Funding.FundingStatus)
	s.NotNil(resp.Funding.PaidAt)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(2500)))
}

func (s *WalletServiceSuite) TestCompleteFundingReplay() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	_, err = s.service.CompleteFunding(s.GetContext(), "prov-1", nil)
	s.NoError(err)

	replay, err := s.service.CompleteFunding(s.GetContext(), "prov-1", nil)
	s.NoError(err)
	s.True(replay.AlreadyProcessed)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(2500)), "replay must not credit twice")
}

func (s *WalletServiceSuite) TestConcurrentCompleteFundingCreditsOnce() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.service.CompleteFunding(s.GetContext(), "prov-1", nil)
		}()
	}
	wg.Wait()

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(2500)))
}

func (s *WalletServiceSuite) TestCompleteFundingUnknownRef() {
	_, err := s.service.CompleteFunding(s.GetContext(), "missing", nil)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *WalletServiceSuite) TestCompleteFundingAfterFailure() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	_, err = s.service.FailFunding(s.GetContext(), "prov-1")
	s.NoError(err)

	_, err = s.service.CompleteFunding(s.GetContext(), "prov-1", nil)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *WalletServiceSuite) TestFailFunding() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	resp, err := s.service.FailFunding(s.GetContext(), "prov-1")
	s.NoError(err)
	s.Equal(types.FundingStatusFailed, resp.FundingStatus)

	// failing twice is a no-op
	resp, err = s.service.FailFunding(s.GetContext(), "prov-1")
	s.NoError(err)
	s.Equal(types.FundingStatusFailed, resp.FundingStatus)

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.IsZero())
}

func (s *WalletServiceSuite) TestFailFundingAfterCompletion() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	_, err = s.service.CompleteFunding(s.GetContext(), "prov-1", nil)
	s.NoError(err)

	_, err = s.service.FailFunding(s.GetContext(), "prov-1")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

// fundingStatusInterleaveRepo injects a concurrent transition between a
// caller's funding read and its status write
type fundingStatusInterleaveRepo struct {
	wallet.Repository
	once       sync.Once
	beforeFail func()
}

func (r *fundingStatusInterleaveRepo) UpdateFundingStatus(ctx context.Context, id string, status types.FundingStatus, paidAt *time.Time) error {
	if status == types.FundingStatusFailed {
		r.once.Do(r.beforeFail)
	}
	return r.Repository.UpdateFundingStatus(ctx, id, status, paidAt)
}

func (s *WalletServiceSuite) TestFailFundingCannotOverwriteConcurrentCompletion() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	// CompleteFunding commits between FailFunding's read of the pending
	// row and its status write
	raceRepo := &fundingStatusInterleaveRepo{
		Repository: s.GetStores().WalletRepo,
		beforeFail: func() {
			_, err := s.service.CompleteFunding(s.GetContext(), "prov-1", nil)
			s.NoError(err)
		},
	}
	failService := NewWalletService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		WalletRepo:  raceRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		PayoutRepo:  s.GetStores().PayoutRepo,
		OrderRepo:   s.GetStores().OrderRepo,
		Notifier:    s.GetNotifier(),
	})

	_, err = failService.FailFunding(s.GetContext(), "prov-1")
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	f, err := s.GetStores().WalletRepo.GetFundingByProviderRef(s.GetContext(), "prov-1")
	s.NoError(err)
	s.Equal(types.FundingStatusCompleted, f.FundingStatus, "completion is terminal")

	w, err := s.service.GetOrCreateWallet(s.GetContext(), "user-1")
	s.NoError(err)
	s.True(w.Balance.Equal(decimal.NewFromInt(2500)))
}

func (s *WalletServiceSuite) TestConcurrentFailFundingStaysIdempotent() {
	_, err := s.service.InitializeFunding(s.GetContext(), &dto.InitializeFundingRequest{
		UserID:      "user-1",
		Amount:      decimal.NewFromInt(2500),
		ProviderRef: "prov-1",
	})
	s.NoError(err)

	// another failure wins the conditional write first
	raceRepo := &fundingStatusInterleaveRepo{
		Repository: s.GetStores().WalletRepo,
		beforeFail: func() {
			_, err := s.service.FailFunding(s.GetContext(), "prov-1")
			s.NoError(err)
		},
	}
	failService := NewWalletService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		DB:          s.GetDB(),
		WalletRepo:  raceRepo,
		PaymentRepo: s.GetStores().PaymentRepo,
		PayoutRepo:  s.GetStores().PayoutRepo,
		OrderRepo:   s.GetStores().OrderRepo,
		Notifier:    s.GetNotifier(),
	})

	resp, err := failService.FailFunding(s.GetContext(), "prov-1")
	s.NoError(err)
	s.Equal(types.FundingStatusFailed, resp.FundingStatus)
}

func (s *WalletServiceSuite) TestCompleteFundingWithRetrySurfacesPermanentErrors() {
	_, err := s.service.CompleteFundingWithRetry(s.GetContext(), "missing", nil)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
