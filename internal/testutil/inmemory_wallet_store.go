package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryWalletStore implements wallet.Repository for tests. Credit and
// debit are atomic under the store mutex, mirroring the transactional
// guarantees of the real repository.
type InMemoryWalletStore struct {
	mu           sync.RWMutex
	wallets      map[string]*wallet.Wallet
	transactions []*wallet.Transaction
	byReference  map[string]*wallet.Transaction
	fundings     map[string]*wallet.Funding
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets:     make(map[string]*wallet.Wallet),
		byReference: make(map[string]*wallet.Transaction),
		fundings:    make(map[string]*wallet.Funding),
	}
}

func (r *InMemoryWalletStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.wallets = make(map[string]*wallet.Wallet)
	r.transactions = nil
	r.byReference = make(map[string]*wallet.Transaction)
	r.fundings = make(map[string]*wallet.Funding)
}

func (r *InMemoryWalletStore) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.wallets {
		if existing.UserID == w.UserID {
			return ierr.NewError("wallet already exists").
				WithHint("A wallet already exists for this user").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *InMemoryWalletStore) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, exists := r.wallets[id]; exists {
		cp := *w
		return &cp, nil
	}
	return nil, ierr.NewError("wallet not found").
		WithHint("Wallet not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetWalletByUserID(ctx context.Context, userID string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, ierr.NewError("wallet not found").
		WithHint("No wallet exists for this user").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) UpdateWalletStatus(ctx context.Context, id string, status types.WalletStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[id]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.WalletStatus = status
	return nil
}

func (r *InMemoryWalletStore) CreditWallet(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applyOperation(ctx, op, false)
}

func (r *InMemoryWalletStore) DebitWallet(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applyOperation(ctx, op, true)
}

// applyOperation mutates balance and ledger as one unit; callers hold the lock
func (r *InMemoryWalletStore) applyOperation(ctx context.Context, op *wallet.Operation, debit bool) (*wallet.Transaction, error) {
	w, exists := r.wallets[op.WalletID]
	if !exists || w.WalletStatus != types.WalletStatusActive {
		return nil, ierr.NewError("no active wallet found").
			WithHint("Wallet is missing or not active").
			Mark(ierr.ErrNotFound)
	}

	if _, exists := r.byReference[op.Reference]; exists {
		return nil, ierr.NewError("duplicate reference").
			WithHint("A transaction with this reference already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	balanceBefore := w.Balance
	var balanceAfter decimal.Decimal
	if debit {
		if balanceBefore.LessThan(op.Amount) {
			return nil, ierr.NewError("insufficient wallet balance").
				WithHint("Wallet balance is lower than the debit amount").
				Mark(ierr.ErrInsufficientBalance)
		}
		balanceAfter = balanceBefore.Sub(op.Amount)
	} else {
		balanceAfter = balanceBefore.Add(op.Amount)
	}

	w.Balance = balanceAfter
	w.UpdatedAt = time.Now().UTC()

	txn := &wallet.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:      op.WalletID,
		UserID:        op.UserID,
		Type:          op.Type,
		Amount:        op.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		SourceType:    op.SourceType,
		SourceID:      op.SourceID,
		Reference:     op.Reference,
		Description:   op.Description,
		Metadata:      op.Metadata,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	r.transactions = append(r.transactions, txn)
	r.byReference[op.Reference] = txn
	return txn, nil
}

func (r *InMemoryWalletStore) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, txn := range r.transactions {
		if txn.ID == id {
			return txn, nil
		}
	}
	return nil, ierr.NewError("transaction not found").
		WithHint("Transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetTransactionByReference(ctx context.Context, reference string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if txn, exists := r.byReference[reference]; exists {
		return txn, nil
	}
	return nil, ierr.NewError("transaction not found").
		WithHint("Transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetRefundTransaction(ctx context.Context, sourceID string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, txn := range r.transactions {
		if txn.SourceID == sourceID &&
			txn.SourceType == types.TransactionSourceRefund &&
			txn.Type == types.TransactionTypeCredit {
			return txn, nil
		}
	}
	return nil, ierr.NewError("transaction not found").
		WithHint("Transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) SumDebitsBySource(ctx context.Context, sourceType types.TransactionSource, sourceID string) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, txn := range r.transactions {
		if txn.SourceID == sourceID &&
			txn.SourceType == sourceType &&
			txn.Type == types.TransactionTypeDebit {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

func (r *InMemoryWalletStore) ListTransactions(ctx context.Context, f *types.WalletTransactionFilter) ([]*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*wallet.Transaction
	for _, txn := range r.transactions {
		if f != nil {
			if f.WalletID != "" && txn.WalletID != f.WalletID {
				continue
			}
			if f.Type != nil && txn.Type != *f.Type {
				continue
			}
			if f.SourceType != nil && txn.SourceType != *f.SourceType {
				continue
			}
			if f.SourceID != "" && txn.SourceID != f.SourceID {
				continue
			}
		}
		matched = append(matched, txn)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset := f.GetOffset()
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]

	limit := f.GetLimit()
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *InMemoryWalletStore) CreateFunding(ctx context.Context, f *wallet.Funding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.fundings[f.ProviderRef]; exists {
		return ierr.NewError("funding already exists").
			WithHint("A funding with this provider reference already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *f
	r.fundings[f.ProviderRef] = &cp
	return nil
}

func (r *InMemoryWalletStore) GetFundingByProviderRef(ctx context.Context, providerRef string) (*wallet.Funding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, exists := r.fundings[providerRef]; exists {
		cp := *f
		return &cp, nil
	}
	return nil, ierr.NewError("wallet funding not found").
		WithHint("No funding exists for this provider reference").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) UpdateFundingStatus(ctx context.Context, id string, status types.FundingStatus, paidAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.fundings {
		if f.ID == id {
			// only a pending funding may transition
			if f.FundingStatus != types.FundingStatusPending {
				return ierr.NewError("funding is already in a terminal state").
					WithHint("Funding has already been completed or failed").
					WithReportableDetails(map[string]interface{}{
						"funding_id":     id,
						"funding_status": f.FundingStatus,
					}).
					Mark(ierr.ErrInvalidOperation)
			}
			f.FundingStatus = status
			f.PaidAt = paidAt
			f.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ierr.NewError("wallet funding not found").
		WithHint("Wallet funding not found").
		Mark(ierr.ErrNotFound)
}
