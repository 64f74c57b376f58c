package dto

import (
	"time"

	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/mealcart/mealcart/internal/validator"
	"github.com/shopspring/decimal"
)

// WalletOperationRequest is the request to credit or debit a wallet
type WalletOperationRequest struct {
	UserID      string                  `json:"user_id" binding:"required" validate:"required"`
	Amount      decimal.Decimal         `json:"amount" binding:"required" validate:"required"`
	SourceType  types.TransactionSource `json:"source_type" binding:"required" validate:"required"`
	SourceID    string                  `json:"source_id,omitempty"`
	Reference   string                  `json:"reference" binding:"required" validate:"required"`
	Description string                  `json:"description,omitempty"`
	Metadata    types.Metadata          `json:"metadata,omitempty"`
}

func (r *WalletOperationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToOperation converts the request to a wallet operation
func (r *WalletOperationRequest) ToOperation(txType types.TransactionType) *wallet.Operation {
	return &wallet.Operation{
		UserID:      r.UserID,
		Type:        txType,
		Amount:      r.Amount,
		SourceType:  r.SourceType,
		SourceID:    r.SourceID,
		Reference:   r.Reference,
		Description: r.Description,
		Metadata:    r.Metadata,
	}
}

// WalletResponse represents a wallet in API responses
type WalletResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Balance      decimal.Decimal    `json:"balance"`
	WalletStatus types.WalletStatus `json:"wallet_status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewWalletResponse converts a domain wallet to a response
func NewWalletResponse(w *wallet.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:           w.ID,
		UserID:       w.UserID,
		Balance:      w.Balance,
		WalletStatus: w.WalletStatus,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

// WalletTransactionResponse represents a ledger row in API responses
type WalletTransactionResponse struct {
	ID            string                  `json:"id"`
	WalletID      string                  `json:"wallet_id"`
	UserID        string                  `json:"user_id"`
	Type          types.TransactionType   `json:"type"`
	Amount        decimal.Decimal         `json:"amount"`
	BalanceBefore decimal.Decimal         `json:"balance_before"`
	BalanceAfter  decimal.Decimal         `json:"balance_after"`
	SourceType    types.TransactionSource `json:"source_type"`
	SourceID      string                  `json:"source_id,omitempty"`
	Reference     string                  `json:"reference"`
	Description   string                  `json:"description,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NewWalletTransactionResponse converts a domain transaction to a response
func NewWalletTransactionResponse(t *wallet.Transaction) *WalletTransactionResponse {
	return &WalletTransactionResponse{
		ID:            t.ID,
		WalletID:      t.WalletID,
		UserID:        t.UserID,
		Type:          t.Type,
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		SourceType:    t.SourceType,
		SourceID:      t.SourceID,
		Reference:     t.Reference,
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}

// ListWalletTransactionsResponse is a page of ledger rows
type ListWalletTransactionsResponse struct {
	Items  []*WalletTransactionResponse `json:"items"`
	Limit  int                          `json:"limit"`
	Offset int                          `json:"offset"`
}

// WalletOperationResponse is the outcome of a credit or debit
type WalletOperationResponse struct {
	Transaction      *WalletTransactionResponse `json:"transaction"`
	AlreadyProcessed bool                       `json:"already_processed"`
}

// NewWalletOperationResponse converts a domain operation result to a response
func NewWalletOperationResponse(res *wallet.OperationResult) *WalletOperationResponse {
	return &WalletOperationResponse{
		Transaction:      NewWalletTransactionResponse(res.Transaction),
		AlreadyProcessed: res.AlreadyProcessed,
	}
}

// InitializeFundingRequest starts an external wallet top-up
type InitializeFundingRequest struct {
	UserID      string          `json:"user_id" binding:"required" validate:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required" validate:"required"`
	ProviderRef string          `json:"provider_ref" binding:"required" validate:"required"`
}

func (r *InitializeFundingRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("funding amount must be greater than 0").
			WithHint("Funding amount must be greater than 0").
			WithReportableDetails(map[string]interface{}{
				"amount": r.Amount,
			}).
			Mark(ierr.ErrInvalidAmount)
	}
	return nil
}

// ToFunding converts the request to a domain funding intent
func (r *InitializeFundingRequest) ToFunding(base types.BaseModel) *wallet.Funding {
	return &wallet.Funding{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_FUNDING),
		UserID:        r.UserID,
		Amount:        r.Amount,
		ProviderRef:   r.ProviderRef,
		FundingStatus: types.FundingStatusPending,
		BaseModel:     base,
	}
}

// FundingResponse represents a funding intent in API responses
type FundingResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Amount        decimal.Decimal     `json:"amount"`
	ProviderRef   string              `json:"provider_ref"`
	FundingStatus types.FundingStatus `json:"funding_status"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// NewFundingResponse converts a domain funding to a response
func NewFundingResponse(f *wallet.Funding) *FundingResponse {
	return &FundingResponse{
		ID:            f.ID,
		UserID:        f.UserID,
		Amount:        f.Amount,
		ProviderRef:   f.ProviderRef,
		FundingStatus: f.FundingStatus,
		PaidAt:        f.PaidAt,
		CreatedAt:     f.CreatedAt,
	}
}

// CompleteFundingResponse is the outcome of completing a funding intent
type CompleteFundingResponse struct {
	Funding          *FundingResponse `json:"funding"`
	AlreadyProcessed bool             `json:"already_processed"`
}

// GatewayWebhookRequest is the payload posted by the payment gateway
// for funding callbacks. Delivery is at-least-once.
type GatewayWebhookRequest struct {
	ProviderRef string     `json:"provider_ref" binding:"required" validate:"required"`
	Event       string     `json:"event" binding:"required" validate:"required"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// gateway webhook event names
const (
	GatewayEventPaymentSucceeded = "payment.succeeded"
	GatewayEventPaymentFailed    = "payment.failed"
)

func (r *GatewayWebhookRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Event != GatewayEventPaymentSucceeded && r.Event != GatewayEventPaymentFailed {
		return ierr.NewError("unknown gateway event").
			WithHint("Unknown gateway event").
			WithReportableDetails(map[string]interface{}{
				"event": r.Event,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
