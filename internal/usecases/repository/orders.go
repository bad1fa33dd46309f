package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/pkg/database"
)

type OrdersRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewOrdersRepository(logger *slog.Logger, pg *database.Postgres) *OrdersRepository {
	return &OrdersRepository{logger: logger, db: pg.DBGetter, transactor: pg.Transactor}
}

// Insert persists a new PENDING order and fills in its id.
func (r *OrdersRepository) Insert(ctx context.Context, order *entities.WithdrawalOrder) error {
	err := r.db(ctx).QueryRow(ctx,
		`INSERT INTO withdrawal_orders
                (account_id, otp_code, amount, phone, expires_at, validation_hash, state, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id`,
		order.AccountID, order.OTPCode, order.Amount, order.Phone,
		order.ExpiresAt, order.ValidationHash, order.State, order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal order: %w", err)
	}

	r.logger.Info("Withdrawal order created",
		"order_id", order.ID, "account_id", order.AccountID, "expires_at", order.ExpiresAt)

	return nil
}

// FindPendingByOTP looks up the unique pending order matching the OTP
// and destination phone. Returns nil when there is no match. Locks the
// row so a concurrent redemption of the same order serializes here.
func (r *OrdersRepository) FindPendingByOTP(ctx context.Context, otp, phone string) (*entities.WithdrawalOrder, error) {
	query := `SELECT id, account_id, otp_code, amount, phone, expires_at, validation_hash, state, created_at
                FROM withdrawal_orders
               WHERE otp_code = $1
                 AND phone = $2
                 AND state = $3
                 FOR UPDATE`

	var order entities.WithdrawalOrder
	err := r.db(ctx).QueryRow(ctx, query, otp, phone, entities.OrderStatePending).Scan(
		&order.ID,
		&order.AccountID,
		&order.OTPCode,
		&order.Amount,
		&order.Phone,
		&order.ExpiresAt,
		&order.ValidationHash,
		&order.State,
		&order.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending order: %w", err)
	}

	return &order, nil
}

// CompletePending flips a pending order to COMPLETED. Returns false
// when the order was no longer pending, which means a concurrent
// redemption won the race.
func (r *OrdersRepository) CompletePending(ctx context.Context, orderID int64) (bool, error) {
	res, err := r.db(ctx).Exec(ctx,
		"UPDATE withdrawal_orders SET state = $1 WHERE id = $2 AND state = $3",
		entities.OrderStateCompleted, orderID, entities.OrderStatePending)
	if err != nil {
		return false, fmt.Errorf("failed to complete order %d: %w", orderID, err)
	}

	return res.RowsAffected() == 1, nil
}
