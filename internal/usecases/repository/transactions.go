package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/pkg/database"
)

// HistoryFilter narrows the transaction listing. Nil fields are
// ignored.
type HistoryFilter struct {
	Type  *string
	Limit int
}

// TransactionsRepository appends to and reads the append-only ledger.
type TransactionsRepository struct {
	logger *slog.Logger

	db         tx.DBGetter
	transactor *tx.Transactor
}

func NewTransactionsRepository(logger *slog.Logger, pg *database.Postgres) *TransactionsRepository {
	return &TransactionsRepository{logger: logger, db: pg.DBGetter, transactor: pg.Transactor}
}

// Append inserts a new ledger record and fills in its id. Records are
// never updated afterwards.
func (r *TransactionsRepository) Append(ctx context.Context, record *entities.TransactionRecord) error {
	err := r.db(ctx).QueryRow(ctx,
		`INSERT INTO transactions
                (reference, account_id, type, amount, description, created_at, resulting_balance)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING id`,
		record.Reference, record.AccountID, record.Type, record.Amount,
		record.Description, record.CreatedAt, record.ResultingBalance,
	).Scan(&record.ID)
	if err != nil {
		return fmt.Errorf("failed to append transaction record: %w", err)
	}

	return nil
}

// FindByAccount lists ledger records for an account, most recent first.
func (r *TransactionsRepository) FindByAccount(ctx context.Context, accountID int64, filter HistoryFilter) ([]entities.TransactionRecord, error) {
	builder := sq.Select("id", "reference", "account_id", "type", "amount", "description", "created_at", "resulting_balance").
		From("transactions").
		Where(sq.Eq{"account_id": accountID}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Type != nil {
		builder = builder.Where(sq.Eq{"type": *filter.Type})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[entities.TransactionRecord])
	if err != nil {
		r.logger.Error("failed to collect transaction rows", "error", err)
		return nil, fmt.Errorf("failed to collect transaction rows: %w", err)
	}

	return records, nil
}
