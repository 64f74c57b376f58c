package postgres

import (
	"context"

	"github.com/mealcart/mealcart/internal/domain/order"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/postgres"
	"github.com/mealcart/mealcart/internal/types"
)

type orderRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewOrderRepository creates a new instance of order repository
func NewOrderRepository(db *postgres.DB, logger *logger.Logger) order.Repository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, vendor_id, total, payout_eligible,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :vendor_id, :total, :payout_eligible,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	query := `
		SELECT * FROM orders
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query order").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]interface{}{
				"order_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var o order.Order
	if err := rows.StructScan(&o); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan order").
			Mark(ierr.ErrDatabase)
	}
	return &o, nil
}

func (r *orderRepository) SetOrderPayoutEligibility(ctx context.Context, id string, eligible bool) error {
	return r.setPayoutEligibility(ctx, "orders", id, eligible)
}

func (r *orderRepository) CreatePackageOrder(ctx context.Context, p *order.PackageOrder) error {
	query := `
		INSERT INTO package_orders (
			id, user_id, total, payout_eligible,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :total, :payout_eligible,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create package order").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *orderRepository) GetPackageOrder(ctx context.Context, id string) (*order.PackageOrder, error) {
	query := `
		SELECT * FROM package_orders
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query package order").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("package order not found").
			WithHint("Package order not found").
			WithReportableDetails(map[string]interface{}{
				"package_order_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p order.PackageOrder
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan package order").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *orderRepository) SetPackageOrderPayoutEligibility(ctx context.Context, id string, eligible bool) error {
	return r.setPayoutEligibility(ctx, "package_orders", id, eligible)
}

func (r *orderRepository) setPayoutEligibility(ctx context.Context, table, id string, eligible bool) error {
	query := `
		UPDATE ` + table + `
		SET
			payout_eligible = :payout_eligible,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":              id,
		"payout_eligible": eligible,
		"updated_by":      types.GetUserID(ctx),
		"status":          types.StatusPublished,
	}

	r.logger.Debugw("setting payout eligibility",
		"table", table,
		"id", id,
		"eligible", eligible,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payout eligibility").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("order not found").
			WithHint("Order not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
