package handlers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/internal/usecases"
)

var _ usecases.TransactionEvents = (*Manager)(nil)

// Manager tracks websocket subscribers per account and fans committed
// ledger records out to them. gorilla/websocket permits at most one
// concurrent writer per connection, so every subscriber carries its own
// write mutex and broadcasts serialize on it.
type Manager struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.RWMutex
	subscribers map[int64]map[*websocket.Conn]*sync.Mutex
}

func NewWebSocketManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Demo runs the pages and the API on different ports.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subscribers: make(map[int64]map[*websocket.Conn]*sync.Mutex),
	}
}

func (m *Manager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(w, r, nil)
}

func (m *Manager) Subscribe(accountID int64, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscribers[accountID] == nil {
		m.subscribers[accountID] = make(map[*websocket.Conn]*sync.Mutex)
	}
	m.subscribers[accountID][conn] = &sync.Mutex{}
}

func (m *Manager) Unsubscribe(accountID int64, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.subscribers[accountID], conn)
	if len(m.subscribers[accountID]) == 0 {
		delete(m.subscribers, accountID)
	}
}

// TransactionAppended pushes a committed ledger record to every page
// subscribed to its account. Failing connections are dropped; delivery
// is best effort and never affects the operation that produced the
// record.
func (m *Manager) TransactionAppended(record *entities.TransactionRecord) {
	m.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(m.subscribers[record.AccountID]))
	for conn, writeMu := range m.subscribers[record.AccountID] {
		conns[conn] = writeMu
	}
	m.mu.RUnlock()

	for conn, writeMu := range conns {
		writeMu.Lock()
		err := conn.WriteJSON(record)
		writeMu.Unlock()

		if err != nil {
			m.logger.Error("Failed to push transaction to subscriber",
				"account_id", record.AccountID, "error", err)
			m.Unsubscribe(record.AccountID, conn)
			conn.Close()
		}
	}
}
