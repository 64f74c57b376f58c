package postgres

import (
	"context"
	"time"

	"github.com/mealcart/mealcart/internal/domain/wallet"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/postgres"
	"github.com/mealcart/mealcart/internal/types"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewWalletRepository creates a new instance of wallet repository
func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return &walletRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWallet creates a new wallet. A second wallet for the same user
// violates the user_id uniqueness constraint and maps to ErrAlreadyExists.
func (r *walletRepository) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, user_id, balance, wallet_status, metadata,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :balance, :wallet_status, :metadata,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating wallet",
		"wallet_id", w.ID,
		"user_id", w.UserID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, w); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A wallet already exists for this user").
				WithReportableDetails(map[string]interface{}{
					"user_id": w.UserID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create wallet").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID
func (r *walletRepository) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var w wallet.Wallet
	if err := rows.StructScan(&w); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet").
			Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

// GetWalletByUserID retrieves the wallet owned by a user
func (r *walletRepository) GetWalletByUserID(ctx context.Context, userID string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE user_id = :user_id
		AND status = :status`

	params := map[string]interface{}{
		"user_id": userID,
		"status":  types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet not found").
			WithHint("No wallet exists for this user").
			WithReportableDetails(map[string]interface{}{
				"user_id": userID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var w wallet.Wallet
	if err := rows.StructScan(&w); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet").
			Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

// UpdateWalletStatus updates the status of a wallet
func (r *walletRepository) UpdateWalletStatus(ctx context.Context, id string, status types.WalletStatus) error {
	query := `
		UPDATE wallets
		SET
			wallet_status = :wallet_status,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":            id,
		"wallet_status": status,
		"updated_by":    types.GetUserID(ctx),
		"status":        types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet status").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]interface{}{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// CreditWallet inserts a credit ledger row and adjusts the cached
// balance as one unit inside the ambient transaction. Credits take no
// explicit lock: the balance adjustment is a single relative UPDATE and
// duplicate protection comes from the reference uniqueness constraint.
func (r *walletRepository) CreditWallet(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	var txn *wallet.Transaction
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
			UPDATE wallets
			SET
				balance = balance + :amount,
				updated_at = NOW(),
				updated_by = :updated_by
			WHERE id = :id
			AND status = :status
			AND wallet_status = :wallet_status
			RETURNING balance`

		params := map[string]interface{}{
			"id":            op.WalletID,
			"amount":        op.Amount,
			"updated_by":    types.GetUserID(ctx),
			"status":        types.StatusPublished,
			"wallet_status": types.WalletStatusActive,
		}

		r.logger.Debugw("crediting wallet",
			"wallet_id", op.WalletID,
			"amount", op.Amount,
			"reference", op.Reference,
		)

		rows, err := r.db.NamedQueryContext(ctx, query, params)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to update wallet balance").
				Mark(ierr.ErrDatabase)
		}
		defer rows.Close()

		if !rows.Next() {
			return ierr.NewError("no active wallet found").
				WithHint("Wallet is missing or not active").
				WithReportableDetails(map[string]interface{}{
					"wallet_id": op.WalletID,
				}).
				Mark(ierr.ErrNotFound)
		}

		var balanceAfter decimal.Decimal
		if err := rows.Scan(&balanceAfter); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to scan balance").
				Mark(ierr.ErrDatabase)
		}
		rows.Close()

		txn, err = r.insertTransaction(ctx, op, balanceAfter.Sub(op.Amount), balanceAfter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DebitWallet debits the wallet inside the ambient transaction. The
// wallet row is locked before the balance check and held until commit,
// so two concurrent debits on the same wallet serialize and the second
// one sees the first one's balance.
func (r *walletRepository) DebitWallet(ctx context.Context, op *wallet.Operation) (*wallet.Transaction, error) {
	var txn *wallet.Transaction
	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
			SELECT balance FROM wallets
			WHERE id = :id
			AND status = :status
			AND wallet_status = :wallet_status
			FOR UPDATE`

		params := map[string]interface{}{
			"id":            op.WalletID,
			"status":        types.StatusPublished,
			"wallet_status": types.WalletStatusActive,
		}

		r.logger.Debugw("locking wallet for debit",
			"wallet_id", op.WalletID,
			"amount", op.Amount,
			"reference", op.Reference,
		)

		rows, err := r.db.NamedQueryContext(ctx, query, params)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to lock wallet").
				Mark(ierr.ErrDatabase)
		}
		defer rows.Close()

		if !rows.Next() {
			return ierr.NewError("no active wallet found").
				WithHint("Wallet is missing or not active").
				WithReportableDetails(map[string]interface{}{
					"wallet_id": op.WalletID,
				}).
				Mark(ierr.ErrNotFound)
		}

		var balanceBefore decimal.Decimal
		if err := rows.Scan(&balanceBefore); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to scan balance").
				Mark(ierr.ErrDatabase)
		}
		rows.Close()

		if balanceBefore.LessThan(op.Amount) {
			return ierr.NewError("insufficient wallet balance").
				WithHint("Wallet balance is lower than the debit amount").
				WithReportableDetails(map[string]interface{}{
					"wallet_id": op.WalletID,
					"balance":   balanceBefore,
					"amount":    op.Amount,
				}).
				Mark(ierr.ErrInsufficientBalance)
		}

		balanceAfter := balanceBefore.Sub(op.Amount)

		updateQuery := `
			UPDATE wallets
			SET
				balance = :balance,
				updated_at = NOW(),
				updated_by = :updated_by
			WHERE id = :id
			AND status = :status`

		updateParams := map[string]interface{}{
			"id":         op.WalletID,
			"balance":    balanceAfter,
			"updated_by": types.GetUserID(ctx),
			"status":     types.StatusPublished,
		}

		result, err := r.db.NamedExecContext(ctx, updateQuery, updateParams)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to update wallet balance").
				Mark(ierr.ErrDatabase)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to get rows affected").
				Mark(ierr.ErrDatabase)
		}
		if rowsAffected == 0 {
			return ierr.NewError("wallet not found").
				WithHint("Wallet not found").
				Mark(ierr.ErrNotFound)
		}

		txn, err = r.insertTransaction(ctx, op, balanceBefore, balanceAfter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// insertTransaction writes the immutable ledger row. A duplicate
// reference trips the uniqueness constraint and maps to ErrAlreadyExists,
// rolling back the balance adjustment with it.
func (r *walletRepository) insertTransaction(ctx context.Context, op *wallet.Operation, balanceBefore, balanceAfter decimal.Decimal) (*wallet.Transaction, error) {
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
	if txn.Metadata == nil {
		txn.Metadata = types.Metadata{}
	}

	query := `
		INSERT INTO wallet_transactions (
			id, wallet_id, user_id, type, amount, balance_before, balance_after,
			source_type, source_id, reference, description, metadata,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :wallet_id, :user_id, :type, :amount, :balance_before, :balance_after,
			:source_type, :source_id, :reference, :description, :metadata,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, txn); err != nil {
		if isUniqueViolation(err) {
			return nil, ierr.WithError(err).
				WithHint("A transaction with this reference already exists").
				WithReportableDetails(map[string]interface{}{
					"reference": op.Reference,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create transaction record").
			Mark(ierr.ErrDatabase)
	}
	return txn, nil
}

// GetTransactionByID retrieves a transaction by its ID
func (r *walletRepository) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	return r.getTransaction(ctx, query, params, map[string]interface{}{
		"transaction_id": id,
	})
}

// GetTransactionByReference retrieves the transaction created under an
// idempotency reference, if any
func (r *walletRepository) GetTransactionByReference(ctx context.Context, reference string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE reference = :reference
		AND status = :status`

	params := map[string]interface{}{
		"reference": reference,
		"status":    types.StatusPublished,
	}

	return r.getTransaction(ctx, query, params, map[string]interface{}{
		"reference": reference,
	})
}

// GetRefundTransaction finds the refund credit tagged to a source
func (r *walletRepository) GetRefundTransaction(ctx context.Context, sourceID string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE source_id = :source_id
		AND source_type = :source_type
		AND type = :type
		AND status = :status`

	params := map[string]interface{}{
		"source_id":   sourceID,
		"source_type": types.TransactionSourceRefund,
		"type":        types.TransactionTypeCredit,
		"status":      types.StatusPublished,
	}

	return r.getTransaction(ctx, query, params, map[string]interface{}{
		"source_id": sourceID,
	})
}

func (r *walletRepository) getTransaction(ctx context.Context, query string, params map[string]interface{}, details map[string]interface{}) (*wallet.Transaction, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("transaction not found").
			WithHint("Transaction not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}

	var txn wallet.Transaction
	if err := rows.StructScan(&txn); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan transaction").
			Mark(ierr.ErrDatabase)
	}
	return &txn, nil
}

// SumDebitsBySource totals all debit rows tagged to a source
func (r *walletRepository) SumDebitsBySource(ctx context.Context, sourceType types.TransactionSource, sourceID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions
		WHERE source_id = :source_id
		AND source_type = :source_type
		AND type = :type
		AND status = :status`

	params := map[string]interface{}{
		"source_id":   sourceID,
		"source_type": sourceType,
		"type":        types.TransactionTypeDebit,
		"status":      types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to sum transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var total decimal.Decimal
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return decimal.Zero, ierr.WithError(err).
				WithHint("Failed to scan transaction sum").
				Mark(ierr.ErrDatabase)
		}
	}
	return total, nil
}

// ListTransactions retrieves ledger rows matching the filter, newest first
func (r *walletRepository) ListTransactions(ctx context.Context, f *types.WalletTransactionFilter) ([]*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE status = :status`

	params := map[string]interface{}{
		"status": types.StatusPublished,
		"limit":  f.GetLimit(),
		"offset": f.GetOffset(),
	}

	if f != nil {
		if f.WalletID != "" {
			query += ` AND wallet_id = :wallet_id`
			params["wallet_id"] = f.WalletID
		}
		if f.Type != nil {
			query += ` AND type = :type`
			params["type"] = *f.Type
		}
		if f.SourceType != nil {
			query += ` AND source_type = :source_type`
			params["source_type"] = *f.SourceType
		}
		if f.SourceID != "" {
			query += ` AND source_id = :source_id`
			params["source_id"] = f.SourceID
		}
	}

	query += `
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset`

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var transactions []*wallet.Transaction
	for rows.Next() {
		var txn wallet.Transaction
		if err := rows.StructScan(&txn); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan transaction").
				Mark(ierr.ErrDatabase)
		}
		transactions = append(transactions, &txn)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating transaction rows").
			Mark(ierr.ErrDatabase)
	}
	return transactions, nil
}

// CreateFunding records a pending funding intent. A duplicate provider
// reference maps to ErrAlreadyExists.
func (r *walletRepository) CreateFunding(ctx context.Context, f *wallet.Funding) error {
	query := `
		INSERT INTO wallet_fundings (
			id, user_id, amount, provider_ref, funding_status, paid_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :amount, :provider_ref, :funding_status, :paid_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating wallet funding",
		"funding_id", f.ID,
		"user_id", f.UserID,
		"provider_ref", f.ProviderRef,
	)

	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A funding with this provider reference already exists").
				WithReportableDetails(map[string]interface{}{
					"provider_ref": f.ProviderRef,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create wallet funding").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// GetFundingByProviderRef retrieves a funding intent by its provider reference
func (r *walletRepository) GetFundingByProviderRef(ctx context.Context, providerRef string) (*wallet.Funding, error) {
	query := `
		SELECT * FROM wallet_fundings
		WHERE provider_ref = :provider_ref
		AND status = :status`

	params := map[string]interface{}{
		"provider_ref": providerRef,
		"status":       types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet funding").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet funding not found").
			WithHint("No funding exists for this provider reference").
			WithReportableDetails(map[string]interface{}{
				"provider_ref": providerRef,
			}).
			Mark(ierr.ErrNotFound)
	}

	var f wallet.Funding
	if err := rows.StructScan(&f); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet funding").
			Mark(ierr.ErrDatabase)
	}
	return &f, nil
}

// UpdateFundingStatus transitions a pending funding intent. Terminal
// states never move, so the write is conditional on the row still being
// PENDING; losing the race surfaces as ErrInvalidOperation with the
// winning status for the caller to re-read.
func (r *walletRepository) UpdateFundingStatus(ctx context.Context, id string, status types.FundingStatus, paidAt *time.Time) error {
	query := `
		UPDATE wallet_fundings
		SET
			funding_status = :funding_status,
			paid_at = :paid_at,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND funding_status = :pending
		AND status = :status`

	params := map[string]interface{}{
		"id":             id,
		"funding_status": status,
		"paid_at":        paidAt,
		"updated_by":     types.GetUserID(ctx),
		"pending":        types.FundingStatusPending,
		"status":         types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update funding status").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		current, err := r.getFundingStatus(ctx, id)
		if err != nil {
			return err
		}
		return ierr.NewError("funding is already in a terminal state").
			WithHint("Funding has already been completed or failed").
			WithReportableDetails(map[string]interface{}{
				"funding_id":     id,
				"funding_status": current,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *walletRepository) getFundingStatus(ctx context.Context, id string) (types.FundingStatus, error) {
	query := `
		SELECT funding_status FROM wallet_fundings
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to query wallet funding").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", ierr.NewError("wallet funding not found").
			WithHint("Wallet funding not found").
			WithReportableDetails(map[string]interface{}{
				"funding_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var status types.FundingStatus
	if err := rows.Scan(&status); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to scan funding status").
			Mark(ierr.ErrDatabase)
	}
	return status, nil
}
