package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vertice/banking-demo/backend/internal/core/ports"
	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/internal/usecases/repository"
)

type AccountsRepository interface {
	FindByID(ctx context.Context, accountID int64) (*entities.Account, error)
	FindSummaryByCustomerID(ctx context.Context, customerID int64) (*entities.AccountSummary, error)
	BalanceForUpdate(ctx context.Context, accountID int64) (decimal.Decimal, bool, error)
	SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
}

type TransactionsRepository interface {
	Append(ctx context.Context, record *entities.TransactionRecord) error
	FindByAccount(ctx context.Context, accountID int64, filter repository.HistoryFilter) ([]entities.TransactionRecord, error)
}

// Transactor runs a function inside a single database transaction;
// every repository call made with the inner context joins it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionEvents receives successfully committed ledger records,
// e.g. to push them to connected banca-web pages. Best effort.
type TransactionEvents interface {
	TransactionAppended(record *entities.TransactionRecord)
}

// AccountService serves the banca-web account pages.
type AccountService struct {
	accounts     AccountsRepository
	transactions TransactionsRepository
}

func NewAccountService(accounts AccountsRepository, transactions TransactionsRepository) *AccountService {
	return &AccountService{accounts: accounts, transactions: transactions}
}

// GetSummary returns the customer's account with holder name and DeUna
// balance.
func (s *AccountService) GetSummary(ctx context.Context, customerID int64) (*entities.AccountSummary, error) {
	summary, err := s.accounts.FindSummaryByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, entities.ErrAccountNotFound
	}

	return summary, nil
}

// GetHistory lists the customer's most recent ledger records. The limit
// is clamped to the page size the demo front end shows.
func (s *AccountService) GetHistory(ctx context.Context, customerID int64, limit int, txType *string) ([]entities.TransactionRecord, error) {
	summary, err := s.GetSummary(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > ports.HistoryPageLimit {
		limit = ports.HistoryPageLimit
	}

	return s.transactions.FindByAccount(ctx, summary.ID, repository.HistoryFilter{Type: txType, Limit: limit})
}
