package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mealcart/mealcart/internal/api/dto"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/idempotency"
	"github.com/mealcart/mealcart/internal/types"
)

// WalletService defines the interface for wallet operations
type WalletService interface {
	// GetOrCreateWallet returns the user's wallet, creating it on first access
	GetOrCreateWallet(ctx context.Context, userID string) (*wallet.Wallet, error)

	// GetWalletByUserID retrieves the wallet owned by a user
	GetWalletByUserID(ctx context.Context, userID string) (*dto.WalletResponse, error)

	// ListTransactions retrieves ledger rows matching the filter
	ListTransactions(ctx context.Context, filter *types.WalletTransactionFilter) (*dto.ListWalletTransactionsResponse, error)

	// CreditWallet applies an idempotent credit and publishes a
	// notification after commit
	CreditWallet(ctx context.Context, op *wallet.Operation) (*wallet.OperationResult, error)

	// DebitWallet applies an idempotent debit under the wallet row lock
	// and publishes a notification after commit
	DebitWallet(ctx context.Context, op *wallet.Operation) (*wallet.OperationResult, error)

	// ApplyOperation runs the idempotent ledger mutation without
	// publishing. Callers composing larger atomic units invoke it inside
	// their own transaction and publish after their own commit.
	ApplyOperation(ctx context.Context, op *wallet.Operation) (*wallet.OperationResult, error)

	// InitializeFunding records a pending external top-up intent
	InitializeFunding(ctx context.Context, req *dto.InitializeFundingRequest) (*dto.FundingResponse, error)

	// CompleteFunding credits the wallet for a paid funding intent,
	// exactly once per provider reference
	CompleteFunding(ctx context.Context, providerRef string, paidAt *time.Time) (*dto.CompleteFundingResponse, error)

	// CompleteFundingWithRetry wraps CompleteFunding with backoff for
	// transient failures; webhook handlers use this
	CompleteFundingWithRetry(ctx context.Context, providerRef string, paidAt *time.Time) (*dto.CompleteFundingResponse, error)

	// FailFunding transitions a pending funding intent to FAILED
	FailFunding(ctx context.Context, providerRef string) (*dto.FundingResponse, error)
}

type walletService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

// NewWalletService creates a new instance of WalletService
func NewWalletService(params ServiceParams) WalletService {
	return &walletService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, userID string) (*wallet.Wallet, error) {
	if userID == "" {
		return nil, ierr.NewError("user_id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}

	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	w = wallet.NewWallet(userID, types.GetDefaultBaseModel(ctx))

	// The create runs in its own savepoint so a lost race on the
	// user_id constraint doesn't poison the ambient transaction.
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		return s.WalletRepo.CreateWallet(ctx, w)
	})
	if err != nil {
		if ierr.IsAlreadyExists(err) {
			return s.WalletRepo.GetWalletByUserID(ctx, userID)
		}
		return nil, err
	}

	s.Logger.Infow("created wallet",
		"wallet_id", w.ID,
		"user_id", userID,
	)
	return w, nil
}

func (s *walletService) GetWalletByUserID(ctx context.Context, userID string) (*dto.WalletResponse, error) {
	w, err := s.WalletRepo.GetWalletByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewWalletResponse(w), nil
}

func (s *walletService) ListTransactions(ctx context.Context, filter *types.WalletTransactionFilter) (*dto.ListWalletTransactionsResponse, error) {
	transactions, err := s.WalletRepo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListWalletTransactionsResponse{
		Items:  make([]*dto.WalletTransactionResponse, 0, len(transactions)),
		Limit:  filter.GetLimit(),
		Offset: filter.GetOffset(),
	}
	for _, t := range transactions {
		response.Items = append(response.Items, dto.NewWalletTransactionResponse(t))
	}
	return response, nil
}

func (s *walletService) CreditWallet(ctx context.Context, op *wallet.Operation) (*wallet.OperationResult, error) {
	op.Type = types.TransactionTypeCredit
	result, err := s.ApplyOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	if !result.AlreadyProcessed {
		s.publishTransactionEvent(ctx, types.NotificationEventWalletCredited, result.Transaction)
	}
	return result, nil
}

func (s *walletService) DebitWallet(ctx context.Context, op *wallet.Operation) (*wallet.OperationResult, error) {
	op.Type = types.TransactionTypeDebit
	result, err := s.ApplyOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	if !result.AlreadyProcessed {
		s.publishTransactionEvent(ctx, types.NotificationEventWalletDebited, result.Transaction)
	}
	return result, nil
}

// ApplyOperation applies the credit or debit exactly once per reference.
// The wallet lookup, the reference gate and the ledger mutation all run
// inside one transaction; replaying a reference returns the prior row
// without touching the ledger.
func (s *walletService) ApplyOperation(ctx context.Context, op *wallet.Operation) (*wallet.OperationResult, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	var result *wallet.OperationResult
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		w, err := s.GetOrCreateWallet(ctx, op.UserID)
		if err != nil {
			return err
		}
		op.WalletID = w.ID

		existing, err := s.WalletRepo.GetTransactionByReference(ctx, op.Reference)
		if err == nil {
			s.Logger.Debugw("operation already processed",
				"reference", op.Reference,
				"transaction_id", existing.ID,
			)
			result = &wallet.OperationResult{Transaction: existing, AlreadyProcessed: true}
			return nil
		}
		if !ierr.IsNotFound(err) {
			return err
		}

		var txn *wallet.Transaction
		switch op.Type {
		case types.TransactionTypeCredit:
			txn, err = s.WalletRepo.CreditWallet(ctx, op)
		case types.TransactionTypeDebit:
			txn, err = s.WalletRepo.DebitWallet(ctx, op)
		default:
			return ierr.NewError("invalid transaction type").
				WithHint("Invalid transaction type").
				Mark(ierr.ErrValidation)
		}
		if err != nil {
			if ierr.IsAlreadyExists(err) {
				// Lost the reference race to a concurrent caller; the
				// mutation rolled back to its savepoint, so re-read the
				// winning row.
				existing, rerr := s.WalletRepo.GetTransactionByReference(ctx, op.Reference)
				if rerr != nil {
					return rerr
				}
				result = &wallet.OperationResult{Transaction: existing, AlreadyProcessed: true}
				return nil
			}
			return err
		}

		result = &wallet.OperationResult{Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *walletService) InitializeFunding(ctx context.Context, req *dto.InitializeFundingRequest) (*dto.FundingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f := req.ToFunding(types.GetDefaultBaseModel(ctx))
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if err := s.WalletRepo.CreateFunding(ctx, f); err != nil {
		return nil, err
	}

	s.Logger.Infow("initialized wallet funding",
		"funding_id", f.ID,
		"user_id", f.UserID,
		"provider_ref", f.ProviderRef,
		"amount", f.Amount,
	)
	return dto.NewFundingResponse(f), nil
}

// CompleteFunding credits the wallet for a paid funding intent. The
// credit and the status flip form one atomic unit; a crash between them
// followed by a retry re-enters the idempotent credit and finishes the
// flip without double crediting.
func (s *walletService) CompleteFunding(ctx context.Context, providerRef string, paidAt *time.Time) (*dto.CompleteFundingResponse, error) {
	f, err := s.WalletRepo.GetFundingByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}

	if f.FundingStatus == types.FundingStatusCompleted {
		return &dto.CompleteFundingResponse{
			Funding:          dto.NewFundingResponse(f),
			AlreadyProcessed: true,
		}, nil
	}
	if f.FundingStatus == types.FundingStatusFailed {
		return nil, ierr.NewError("funding has already failed").
			WithHint("A failed funding cannot be completed").
			WithReportableDetails(map[string]interface{}{
				"provider_ref": providerRef,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	when := time.Now().UTC()
	if paidAt != nil {
		when = paidAt.UTC()
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		op := &wallet.Operation{
			UserID:     f.UserID,
			Type:       types.TransactionTypeCredit,
			Amount:     f.Amount,
			SourceType: types.TransactionSourceWalletFunding,
			SourceID:   f.ID,
			Reference: s.idempGen.GenerateKey(idempotency.ScopeWalletFunding, map[string]interface{}{
				"provider_ref": providerRef,
			}),
			Description: "wallet funding",
		}

		if _, err := s.ApplyOperation(ctx, op); err != nil {
			return err
		}

		return s.WalletRepo.UpdateFundingStatus(ctx, f.ID, types.FundingStatusCompleted, &when)
	})
	if err != nil {
		if ierr.IsInvalidOperation(err) {
			// Lost the status race to a concurrent transition; re-read
			// to see who won. A concurrent completion already credited,
			// so the replay answer stands.
			current, rerr := s.WalletRepo.GetFundingByProviderRef(ctx, providerRef)
			if rerr != nil {
				return nil, rerr
			}
			if current.FundingStatus == types.FundingStatusCompleted {
				return &dto.CompleteFundingResponse{
					Funding:          dto.NewFundingResponse(current),
					AlreadyProcessed: true,
				}, nil
			}
		}
		return nil, err
	}

	f.FundingStatus = types.FundingStatusCompleted
	f.PaidAt = &when

	s.Logger.Infow("completed wallet funding",
		"funding_id", f.ID,
		"user_id", f.UserID,
		"provider_ref", providerRef,
		"amount", f.Amount,
	)
	s.publishFundingEvent(ctx, f)

	return &dto.CompleteFundingResponse{
		Funding: dto.NewFundingResponse(f),
	}, nil
}

// CompleteFundingWithRetry retries transient completion failures with
// exponential backoff. Business errors are permanent and surface
// immediately.
func (s *walletService) CompleteFundingWithRetry(ctx context.Context, providerRef string, paidAt *time.Time) (*dto.CompleteFundingResponse, error) {
	var response *dto.CompleteFundingResponse

	operation := func() error {
		res, err := s.CompleteFunding(ctx, providerRef, paidAt)
		if err != nil {
			if ierr.IsNotFound(err) || ierr.IsValidation(err) || ierr.IsInvalidOperation(err) {
				return backoff.Permanent(err)
			}
			s.Logger.Debugw("failed to complete funding, retrying",
				"error", err,
				"provider_ref", providerRef,
			)
			return err
		}
		response = res
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		s.Logger.Errorw("failed to complete funding after retries",
			"error", err,
			"provider_ref", providerRef,
		)
		return nil, err
	}
	return response, nil
}

func (s *walletService) FailFunding(ctx context.Context, providerRef string) (*dto.FundingResponse, error) {
	f, err := s.WalletRepo.GetFundingByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}

	if f.FundingStatus == types.FundingStatusFailed {
		return dto.NewFundingResponse(f), nil
	}
	if f.FundingStatus.IsTerminal() {
		return nil, ierr.NewError("funding is already completed").
			WithHint("A completed funding cannot be failed").
			WithReportableDetails(map[string]interface{}{
				"provider_ref": providerRef,
				"status":       f.FundingStatus,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.WalletRepo.UpdateFundingStatus(ctx, f.ID, types.FundingStatusFailed, nil); err != nil {
		if ierr.IsInvalidOperation(err) {
			// A concurrent transition reached a terminal state between
			// our read and the conditional write. Failing twice stays
			// idempotent; overwriting a completion is refused.
			current, rerr := s.WalletRepo.GetFundingByProviderRef(ctx, providerRef)
			if rerr != nil {
				return nil, rerr
			}
			if current.FundingStatus == types.FundingStatusFailed {
				return dto.NewFundingResponse(current), nil
			}
			return nil, ierr.NewError("funding is already completed").
				WithHint("A completed funding cannot be failed").
				WithReportableDetails(map[string]interface{}{
					"provider_ref": providerRef,
					"status":       current.FundingStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		return nil, err
	}

	f.FundingStatus = types.FundingStatusFailed
	s.Logger.Infow("failed wallet funding",
		"funding_id", f.ID,
		"provider_ref", providerRef,
	)
	return dto.NewFundingResponse(f), nil
}

// publishTransactionEvent dispatches a wallet notification after commit.
// Failures are logged and swallowed; the ledger mutation stands.
func (s *walletService) publishTransactionEvent(ctx context.Context, eventName string, txn *wallet.Transaction) {
	if s.Notifier == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"transaction_id": txn.ID,
		"wallet_id":      txn.WalletID,
		"type":           txn.Type,
		"amount":         txn.Amount,
		"source_type":    txn.SourceType,
		"source_id":      txn.SourceID,
		"reference":      txn.Reference,
	})
	if err != nil {
		s.Logger.Errorw("failed to marshal notification payload",
			"error", err,
			"transaction_id", txn.ID,
		)
		return
	}

	event := &types.NotificationEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		EventName: eventName,
		UserID:    txn.UserID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.Notifier.PublishEvent(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish wallet notification",
			"error", err,
			"event_name", eventName,
			"transaction_id", txn.ID,
		)
	}
}

func (s *walletService) publishFundingEvent(ctx context.Context, f *wallet.Funding) {
	if s.Notifier == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"funding_id":   f.ID,
		"provider_ref": f.ProviderRef,
		"amount":       f.Amount,
		"paid_at":      f.PaidAt,
	})
	if err != nil {
		s.Logger.Errorw("failed to marshal notification payload",
			"error", err,
			"funding_id", f.ID,
		)
		return
	}

	event := &types.NotificationEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		EventName: types.NotificationEventWalletFundingComplete,
		UserID:    f.UserID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.Notifier.PublishEvent(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish funding notification",
			"error", err,
			"funding_id", f.ID,
		)
	}
}
