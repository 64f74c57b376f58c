package wallet

import (
	"context"
	"time"

	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// Repository defines the interface for wallet persistence operations.
//
// CreditWallet and DebitWallet are atomic at the store level: the ledger
// row insert and the cached balance update happen as one unit inside the
// ambient transaction. DebitWallet additionally holds the wallet row's
// exclusive lock from the balance read through the write, so two
// concurrent debits can never both pass a stale balance check.
type Repository interface {
	// Wallet operations
	CreateWallet(ctx context.Context, w *Wallet) error
	GetWalletByID(ctx context.Context, id string) (*Wallet, error)
	GetWalletByUserID(ctx context.Context, userID string) (*Wallet, error)
	UpdateWalletStatus(ctx context.Context, id string, status types.WalletStatus) error

	// Ledger operations
	CreditWallet(ctx context.Context, op *Operation) (*Transaction, error)
	DebitWallet(ctx context.Context, op *Operation) (*Transaction, error)

	// Transaction lookups
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*Transaction, error)
	// GetRefundTransaction finds the refund credit for a source, if any
	GetRefundTransaction(ctx context.Context, sourceID string) (*Transaction, error)
	// SumDebitsBySource totals all debits tagged to a source
	SumDebitsBySource(ctx context.Context, sourceType types.TransactionSource, sourceID string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, f *types.WalletTransactionFilter) ([]*Transaction, error)

	// Funding operations
	CreateFunding(ctx context.Context, f *Funding) error
	GetFundingByProviderRef(ctx context.Context, providerRef string) (*Funding, error)
	// UpdateFundingStatus transitions a PENDING funding to a terminal
	// state; writing over a terminal state returns ErrInvalidOperation
	UpdateFundingStatus(ctx context.Context, id string, status types.FundingStatus, paidAt *time.Time) error
}
