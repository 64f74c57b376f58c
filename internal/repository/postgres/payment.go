package postgres

import (
	"context"

	"github.com/mealcart/mealcart/internal/domain/payment"
	ierr "github.com/mealcart/mealcart/internal/errors"
	"github.com/mealcart/mealcart/internal/logger"
	"github.com/mealcart/mealcart/internal/postgres"
	"github.com/mealcart/mealcart/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewPaymentRepository creates a new instance of payment repository
func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, destination_type, destination_id, amount,
			payment_status, provider_reference,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :user_id, :destination_type, :destination_id, :amount,
			:payment_status, :provider_reference,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating payment",
		"payment_id", p.ID,
		"destination_type", p.DestinationType,
		"destination_id", p.DestinationID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A payment already exists for this destination").
				WithReportableDetails(map[string]interface{}{
					"destination_id": p.DestinationID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	return r.getPayment(ctx, query, params, map[string]interface{}{
		"payment_id": id,
	})
}

func (r *paymentRepository) GetByDestination(ctx context.Context, destinationType types.PaymentDestinationType, destinationID string) (*payment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE destination_type = :destination_type
		AND destination_id = :destination_id
		AND status = :status`

	params := map[string]interface{}{
		"destination_type": destinationType,
		"destination_id":   destinationID,
		"status":           types.StatusPublished,
	}

	return r.getPayment(ctx, query, params, map[string]interface{}{
		"destination_type": destinationType,
		"destination_id":   destinationID,
	})
}

func (r *paymentRepository) getPayment(ctx context.Context, query string, params map[string]interface{}, details map[string]interface{}) (*payment.Payment, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query payment").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("payment not found").
			WithHint("Payment not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}

	var p payment.Payment
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status types.PaymentStatus) error {
	query := `
		UPDATE payments
		SET
			payment_status = :payment_status,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":             id,
		"payment_status": status,
		"updated_by":     types.GetUserID(ctx),
		"status":         types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment status").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("payment not found").
			WithHint("Payment not found").
			WithReportableDetails(map[string]interface{}{
				"payment_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
