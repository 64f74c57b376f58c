package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mealcart/mealcart/internal/api/dto"
	"github.com/mealcart/mealcart/internal/domain/payment"
	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/idempotency"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// RefundService reconciles how much money actually moved for a
// cancelled order and returns it to the user's wallet exactly once.
type RefundService interface {
	RefundOrder(ctx context.Context, orderID string) (*dto.RefundResponse, error)
	RefundPackageOrder(ctx context.Context, packageOrderID string) (*dto.RefundResponse, error)
}

type refundService struct {
	ServiceParams
	walletService WalletService
	idempGen      *idempotency.Generator
}

// NewRefundService creates a new instance of RefundService
func NewRefundService(params ServiceParams) RefundService {
	return &refundService{
		ServiceParams: params,
		walletService: NewWalletService(params),
		idempGen:      idempotency.NewGenerator(),
	}
}

// refundTarget captures how the shared reconciliation algorithm binds
// to a concrete aggregate
type refundTarget struct {
	id               string
	userID           string
	sourceType       types.TransactionSource
	destinationType  types.PaymentDestinationType
	scope            idempotency.Scope
	eventName        string
	clearEligibility func(ctx context.Context) error
}

func (s *refundService) RefundOrder(ctx context.Context, orderID string) (*dto.RefundResponse, error) {
	o, err := s.OrderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, &refundTarget{
		id:              orderID,
		userID:          o.UserID,
		sourceType:      types.TransactionSourceOrderPayment,
		destinationType: types.PaymentDestinationTypeOrder,
		scope:           idempotency.ScopeOrderRefund,
		eventName:       types.NotificationEventOrderRefunded,
		clearEligibility: func(ctx context.Context) error {
			return s.OrderRepo.SetOrderPayoutEligibility(ctx, orderID, false)
		},
	})
}

func (s *refundService) RefundPackageOrder(ctx context.Context, packageOrderID string) (*dto.RefundResponse, error) {
	p, err := s.OrderRepo.GetPackageOrder(ctx, packageOrderID)
	if err != nil {
		return nil, err
	}

	return s.reconcile(ctx, &refundTarget{
		id:              packageOrderID,
		userID:          p.UserID,
		sourceType:      types.TransactionSourcePackagePayment,
		destinationType: types.PaymentDestinationTypePackageOrder,
		scope:           idempotency.ScopePackageOrderRefund,
		eventName:       types.NotificationEventPackageOrderRefunded,
		clearEligibility: func(ctx context.Context) error {
			return s.OrderRepo.SetPackageOrderPayoutEligibility(ctx, packageOrderID, false)
		},
	})
}

// reconcile computes the reconciled amount and applies the refund.
//
// The amount is a pure function of the ledger and the payment record:
// the sum of wallet debits tagged to the order plus the external payment
// amount when the payment completed. The credit, the eligibility flip,
// the payout cancellation and the payment flip form one atomic unit.
func (s *refundService) reconcile(ctx context.Context, t *refundTarget) (*dto.RefundResponse, error) {
	// Replay gate: an existing refund credit means the whole unit
	// already committed.
	existing, err := s.WalletRepo.GetRefundTransaction(ctx, t.id)
	if err == nil {
		s.Logger.Debugw("refund already applied",
			"source_id", t.id,
			"transaction_id", existing.ID,
			"amount", existing.Amount,
		)
		return &dto.RefundResponse{
			Amount:          existing.Amount,
			AlreadyRefunded: true,
		}, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	walletUsed, err := s.WalletRepo.SumDebitsBySource(ctx, t.sourceType, t.id)
	if err != nil {
		return nil, err
	}

	externalPaid := decimal.Zero
	var pay *payment.Payment
	pay, err = s.PaymentRepo.GetByDestination(ctx, t.destinationType, t.id)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		pay = nil
	}
	if pay != nil && pay.PaymentStatus == types.PaymentStatusCompleted {
		externalPaid = pay.Amount
	}

	total := walletUsed.Add(externalPaid)
	if total.IsZero() {
		s.Logger.Infow("nothing to refund",
			"source_id", t.id,
			"user_id", t.userID,
		)
		return &dto.RefundResponse{Amount: decimal.Zero}, nil
	}

	var result *wallet.OperationResult
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		op := &wallet.Operation{
			UserID:     t.userID,
			Type:       types.TransactionTypeCredit,
			Amount:     total,
			SourceType: types.TransactionSourceRefund,
			SourceID:   t.id,
			Reference: s.idempGen.GenerateKey(t.scope, map[string]interface{}{
				"source_id": t.id,
			}),
			Description: "refund",
		}

		var opErr error
		result, opErr = s.walletService.ApplyOperation(ctx, op)
		if opErr != nil {
			return opErr
		}

		if err := t.clearEligibility(ctx); err != nil {
			return err
		}

		cancelled, err := s.PayoutRepo.MarkFailedByOrder(ctx, t.id)
		if err != nil {
			return err
		}
		if cancelled > 0 {
			s.Logger.Infow("cancelled payouts for refunded order",
				"order_id", t.id,
				"cancelled", cancelled,
			)
		}

		if pay != nil && pay.PaymentStatus == types.PaymentStatusCompleted {
			if err := s.PaymentRepo.UpdateStatus(ctx, pay.ID, types.PaymentStatusRefunded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyProcessed {
		// A concurrent invocation won the refund key race; its unit
		// committed, so report the replay.
		return &dto.RefundResponse{
			Amount:          result.Transaction.Amount,
			AlreadyRefunded: true,
		}, nil
	}

	s.Logger.Infow("refund applied",
		"source_id", t.id,
		"user_id", t.userID,
		"amount", total,
		"wallet_used", walletUsed,
		"external_paid", externalPaid,
	)
	s.publishRefundEvent(ctx, t, total)

	return &dto.RefundResponse{Amount: total}, nil
}

func (s *refundService) publishRefundEvent(ctx context.Context, t *refundTarget, amount decimal.Decimal) {
	if s.Notifier == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"source_id": t.id,
		"amount":    amount,
	})
	if err != nil {
		s.Logger.Errorw("failed to marshal notification payload",
			"error", err,
			"source_id", t.id,
		)
		return
	}

	event := &types.NotificationEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION),
		EventName: t.eventName,
		UserID:    t.userID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := s.Notifier.PublishEvent(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish refund notification",
			"error", err,
			"event_name", t.eventName,
			"source_id", t.id,
		)
	}
}
