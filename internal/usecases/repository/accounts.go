package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/pkg/database"
)

// AccountsRepository reads and mutates account rows. Balance mutations
// are only ever issued from inside a transactor unit of work.
type AccountsRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewAccountsRepository(logger *slog.Logger, pg *database.Postgres) *AccountsRepository {
	return &AccountsRepository{logger: logger, db: pg.DBGetter, transactor: pg.Transactor}
}

// FindByID retrieves a single account. Returns nil when absent.
func (r *AccountsRepository) FindByID(ctx context.Context, accountID int64) (*entities.Account, error) {
	query := `SELECT id, customer_id, number, balance, created_at
                FROM accounts
               WHERE id = $1`

	var account entities.Account
	err := r.db(ctx).QueryRow(ctx, query, accountID).Scan(
		&account.ID,
		&account.CustomerID,
		&account.Number,
		&account.Balance,
		&account.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account by id: %w", err)
	}

	return &account, nil
}

// FindSummaryByCustomerID retrieves the account of the given customer
// together with the holder display name and the DeUna balance.
func (r *AccountsRepository) FindSummaryByCustomerID(ctx context.Context, customerID int64) (*entities.AccountSummary, error) {
	query := `SELECT a.id, a.customer_id, a.number, a.balance, a.created_at,
                     CASE WHEN c.kind = 'business' THEN c.business_name
                          ELSE c.first_name || ' ' || c.last_name
                      END AS holder_name,
                     COALESCE(w.balance, 0) AS deuna_balance
                FROM accounts a
                JOIN customers c ON c.id = a.customer_id
           LEFT JOIN deuna_wallets w ON w.account_id = a.id
               WHERE a.customer_id = $1`

	var summary entities.AccountSummary
	err := r.db(ctx).QueryRow(ctx, query, customerID).Scan(
		&summary.ID,
		&summary.CustomerID,
		&summary.Number,
		&summary.Balance,
		&summary.CreatedAt,
		&summary.HolderName,
		&summary.DeunaBalance,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account summary: %w", err)
	}

	return &summary, nil
}

// BalanceForUpdate reads the current balance with the account row
// locked for the rest of the surrounding transaction. The caller must
// be inside a transactor unit of work.
func (r *AccountsRepository) BalanceForUpdate(ctx context.Context, accountID int64) (decimal.Decimal, bool, error) {
	var balance decimal.Decimal
	err := r.db(ctx).QueryRow(ctx,
		"SELECT balance FROM accounts WHERE id = $1 FOR UPDATE", accountID).Scan(&balance)

	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to lock account balance: %w", err)
	}

	return balance, true, nil
}

// SetBalance writes an already-computed balance. The value must derive
// from a BalanceForUpdate read in the same transaction.
func (r *AccountsRepository) SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	_, err := r.db(ctx).Exec(ctx,
		"UPDATE accounts SET balance = $1 WHERE id = $2", balance, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	return nil
}
