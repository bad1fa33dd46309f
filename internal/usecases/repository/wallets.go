package repository

import (
	"context"
	"fmt"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/shopspring/decimal"

	"github.com/vertice/banking-demo/backend/pkg/database"
)

// WalletsRepository manages the DeUna auxiliary balances.
type WalletsRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewWalletsRepository(logger *slog.Logger, pg *database.Postgres) *WalletsRepository {
	return &WalletsRepository{logger: logger, db: pg.DBGetter, transactor: pg.Transactor}
}

// Credit creates the wallet at the given amount or increments an
// existing one. Must run inside the recharge unit of work.
func (r *WalletsRepository) Credit(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO deuna_wallets (account_id, balance, updated_at)
         VALUES ($1, $2, NOW())
         ON CONFLICT (account_id)
         DO UPDATE SET balance = deuna_wallets.balance + $2, updated_at = NOW()`,
		accountID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit deuna wallet: %w", err)
	}

	return nil
}
