package wallet

import (
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Operation represents the request to credit or debit a wallet
type Operation struct {
	// UserID selects the wallet; the wallet is created lazily if absent
	UserID string `json:"user_id"`
	// WalletID is resolved by the service, callers leave it empty
	WalletID string                  `json:"wallet_id,omitempty"`
	Type     types.TransactionType   `json:"type"`
	Amount   decimal.Decimal         `json:"amount"`
	// SourceType tags the business event behind the movement
	SourceType types.TransactionSource `json:"source_type"`
	// SourceID is an optional foreign reference, e.g. an order id
	SourceID string `json:"source_id,omitempty"`
	// Reference is the globally unique idempotency key; replaying an
	// operation with the same reference is a successful no-op
	Reference   string         `json:"reference"`
	Description string         `json:"description,omitempty"`
	Metadata    types.Metadata `json:"metadata,omitempty"`
}

func (o *Operation) Validate() error {
	if err := o.Type.Validate(); err != nil {
		return err
	}
	if err := o.SourceType.Validate(); err != nil {
		return err
	}
	if o.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("User id is required").
			Mark(ierr.ErrValidation)
	}
	if o.Reference == "" {
		return ierr.NewError("reference is required").
			WithHint("An idempotency reference is required").
			Mark(ierr.ErrValidation)
	}
	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("wallet transaction amount must be greater than 0").
			WithHint("Wallet transaction amount must be greater than 0").
			WithReportableDetails(map[string]interface{}{
				"amount": o.Amount,
			}).
			Mark(ierr.ErrInvalidAmount)
	}
	return nil
}

// OperationResult is the outcome of an idempotent credit or debit.
// AlreadyProcessed is true when the reference had been applied before;
// Transaction is then the prior ledger row and no mutation occurred.
type OperationResult struct {
	Transaction      *Transaction `json:"transaction"`
	AlreadyProcessed bool         `json:"already_processed"`
}

// FundingResult is the outcome of completing a funding intent
type FundingResult struct {
	Funding          *Funding `json:"funding"`
	AlreadyProcessed bool     `json:"already_processed"`
}
