package usecases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/internal/usecases/repository"
)

var errStoreOffline = errors.New("store offline")

// fakeStore holds the in-process state backing the repository fakes so
// the services can be exercised without Postgres. fakeTransactor
// snapshots it before a unit of work and restores it on error,
// mirroring a rollback.
type fakeStore struct {
	accounts map[int64]*entities.Account
	holders  map[int64]string
	orders   map[int64]*entities.WithdrawalOrder
	records  []entities.TransactionRecord
	wallets  map[int64]*entities.DeunaWallet

	nextOrderID  int64
	nextRecordID int64

	lastFilter repository.HistoryFilter

	// failure injection
	appendErr         error
	forceCompleteFail bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts: make(map[int64]*entities.Account),
		holders:  make(map[int64]string),
		orders:   make(map[int64]*entities.WithdrawalOrder),
		wallets:  make(map[int64]*entities.DeunaWallet),
	}
}

func (s *fakeStore) addAccount(id, customerID int64, holder, balance string) *entities.Account {
	account := &entities.Account{
		ID:         id,
		CustomerID: customerID,
		Number:     strconv.FormatInt(2200458710+id, 10),
		Balance:    decimal.RequireFromString(balance),
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.accounts[id] = account
	s.holders[customerID] = holder

	return account
}

func (s *fakeStore) clone() *fakeStore {
	copied := newFakeStore()
	copied.holders = s.holders
	copied.nextOrderID = s.nextOrderID
	copied.nextRecordID = s.nextRecordID
	for id, account := range s.accounts {
		a := *account
		copied.accounts[id] = &a
	}
	for id, order := range s.orders {
		o := *order
		copied.orders[id] = &o
	}
	for id, wallet := range s.wallets {
		w := *wallet
		copied.wallets[id] = &w
	}
	copied.records = append([]entities.TransactionRecord(nil), s.records...)

	return copied
}

func (s *fakeStore) restore(from *fakeStore) {
	s.accounts = from.accounts
	s.orders = from.orders
	s.wallets = from.wallets
	s.records = from.records
	s.nextOrderID = from.nextOrderID
	s.nextRecordID = from.nextRecordID
}

// fakeTransactor applies the all-or-nothing contract to the fake store.
type fakeTransactor struct {
	store *fakeStore
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := t.store.clone()
	if err := fn(ctx); err != nil {
		t.store.restore(snapshot)
		return err
	}

	return nil
}

type fakeAccounts struct{ store *fakeStore }

func (f fakeAccounts) FindByID(_ context.Context, accountID int64) (*entities.Account, error) {
	account, ok := f.store.accounts[accountID]
	if !ok {
		return nil, nil
	}
	copied := *account

	return &copied, nil
}

func (f fakeAccounts) FindSummaryByCustomerID(_ context.Context, customerID int64) (*entities.AccountSummary, error) {
	for _, account := range f.store.accounts {
		if account.CustomerID != customerID {
			continue
		}

		deuna := decimal.Zero
		if wallet, ok := f.store.wallets[account.ID]; ok {
			deuna = wallet.Balance
		}

		return &entities.AccountSummary{
			Account:      *account,
			HolderName:   f.store.holders[customerID],
			DeunaBalance: deuna,
		}, nil
	}

	return nil, nil
}

func (f fakeAccounts) BalanceForUpdate(_ context.Context, accountID int64) (decimal.Decimal, bool, error) {
	account, ok := f.store.accounts[accountID]
	if !ok {
		return decimal.Zero, false, nil
	}

	return account.Balance, true, nil
}

func (f fakeAccounts) SetBalance(_ context.Context, accountID int64, balance decimal.Decimal) error {
	account, ok := f.store.accounts[accountID]
	if !ok {
		return errors.New("account not found")
	}
	account.Balance = balance

	return nil
}

type fakeOrders struct{ store *fakeStore }

func (f fakeOrders) Insert(_ context.Context, order *entities.WithdrawalOrder) error {
	f.store.nextOrderID++
	order.ID = f.store.nextOrderID
	copied := *order
	f.store.orders[order.ID] = &copied

	return nil
}

func (f fakeOrders) FindPendingByOTP(_ context.Context, otp, phone string) (*entities.WithdrawalOrder, error) {
	for _, order := range f.store.orders {
		if order.OTPCode == otp && order.Phone == phone && order.State == entities.OrderStatePending {
			copied := *order
			return &copied, nil
		}
	}

	return nil, nil
}

func (f fakeOrders) CompletePending(_ context.Context, orderID int64) (bool, error) {
	if f.store.forceCompleteFail {
		return false, nil
	}

	order, ok := f.store.orders[orderID]
	if !ok || order.State != entities.OrderStatePending {
		return false, nil
	}
	order.State = entities.OrderStateCompleted

	return true, nil
}

type fakeTransactions struct{ store *fakeStore }

func (f fakeTransactions) Append(_ context.Context, record *entities.TransactionRecord) error {
	if f.store.appendErr != nil {
		return f.store.appendErr
	}

	f.store.nextRecordID++
	record.ID = f.store.nextRecordID
	f.store.records = append(f.store.records, *record)

	return nil
}

func (f fakeTransactions) FindByAccount(_ context.Context, accountID int64, filter repository.HistoryFilter) ([]entities.TransactionRecord, error) {
	f.store.lastFilter = filter

	var out []entities.TransactionRecord
	for i := len(f.store.records) - 1; i >= 0; i-- {
		record := f.store.records[i]
		if record.AccountID != accountID {
			continue
		}
		if filter.Type != nil && record.Type != *filter.Type {
			continue
		}
		out = append(out, record)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}

	return out, nil
}

type fakeWallets struct{ store *fakeStore }

func (f fakeWallets) Credit(_ context.Context, accountID int64, amount decimal.Decimal) error {
	wallet, ok := f.store.wallets[accountID]
	if !ok {
		f.store.wallets[accountID] = &entities.DeunaWallet{AccountID: accountID, Balance: amount}
		return nil
	}
	wallet.Balance = wallet.Balance.Add(amount)

	return nil
}

// fixedOTP always returns the same code.
type fixedOTP string

func (f fixedOTP) Code() string { return string(f) }

// capturedEvents records published ledger records.
type capturedEvents struct {
	records []*entities.TransactionRecord
}

func (c *capturedEvents) TransactionAppended(record *entities.TransactionRecord) {
	c.records = append(c.records, record)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
