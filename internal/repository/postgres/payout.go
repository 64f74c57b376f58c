package postgres

import (
	"context"

	"github.com/mealcart/mealcart/internal/domain/payout"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/postgres"
	"github.com/mealcart/mealcart/internal/types"
)

type payoutRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPayoutRepository creates a new instance of payout repository
func NewPayoutRepository(db *postgres.DB, logger *logger.Logger) payout.Repository {
	return &payoutRepository{
		db:     db,
		logger: logger,
	}
}

func (r *payoutRepository) Create(ctx context.Context, p *payout.Payout) error {
	query := `
		INSERT INTO payouts (
			id, vendor_id, order_id, amount, payout_status, scheduled_for, paid_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :vendor_id, :order_id, :amount, :payout_status, :scheduled_for, :paid_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payout",
		"payout_id", p.ID,
		"order_id", p.OrderID,
		"vendor_id", p.VendorID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payout").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *payoutRepository) Get(ctx context.Context, id string) (*payout.Payout, error) {
	query := `
		SELECT * FROM payouts
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query payout").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("payout not found").
			WithHint("Payout not found").
			WithReportableDetails(map[string]interface{}{
				"payout_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p payout.Payout
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan payout").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *payoutRepository) ListByOrder(ctx context.Context, orderID string) ([]*payout.Payout, error) {
	query := `
		SELECT * FROM payouts
		WHERE order_id = :order_id
		AND status = :status
		ORDER BY created_at DESC`

	params := map[string]interface{}{
		"order_id": orderID,
		"status":   types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query payouts").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var payouts []*payout.Payout
	for rows.Next() {
		var p payout.Payout
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan payout").
				Mark(ierr.ErrDatabase)
		}
		payouts = append(payouts, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating payout rows").
			Mark(ierr.ErrDatabase)
	}
	return payouts, nil
}

func (r *payoutRepository) UpdateStatus(ctx context.Context, id string, status types.PayoutStatus) error {
	query := `
		UPDATE payouts
		SET
			payout_status = :payout_status,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":            id,
		"payout_status": status,
		"updated_by":    types.GetUserID(ctx),
		"status":        types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payout status").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("payout not found").
			WithHint("Payout not found").
			WithReportableDetails(map[string]interface{}{
				"payout_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// MarkFailedByOrder cancels every payout for the order that has not
// been paid out yet. Paid payouts are left untouched.
func (r *payoutRepository) MarkFailedByOrder(ctx context.Context, orderID string) (int, error) {
	query := `
		UPDATE payouts
		SET
			payout_status = :failed,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE order_id = :order_id
		AND payout_status NOT IN (:paid, :failed)
		AND status = :status`

	params := map[string]interface{}{
		"order_id":   orderID,
		"failed":     types.PayoutStatusFailed,
		"paid":       types.PayoutStatusPaid,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	r.logger.Debugw("cancelling payouts for refunded order",
		"order_id", orderID,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to cancel payouts").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	return int(rows), nil
}
