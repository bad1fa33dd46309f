package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vertice/banking-demo/backend/internal/entities"
)

// subscribeOne stands up a server that upgrades the first request and
// subscribes it to the given account, returning the client side of the
// connection and the server-side one for teardown scenarios.
func subscribeOne(t *testing.T, manager *Manager, accountID int64) (client, server *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := manager.Upgrade(w, r)
		if err != nil {
			return
		}
		manager.Subscribe(accountID, conn)
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-serverConns:
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber was never registered")
	}

	return client, server
}

func TestManagerConcurrentBroadcasts(t *testing.T) {
	manager := NewWebSocketManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	client, _ := subscribeOne(t, manager, 1)

	// Several operations on the same account can commit at once, each
	// one broadcasting from its own request goroutine. All records must
	// arrive intact on the single shared connection.
	const broadcasts = 50

	var wg sync.WaitGroup
	for i := range broadcasts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			manager.TransactionAppended(&entities.TransactionRecord{
				ID:          int64(i + 1),
				AccountID:   1,
				Type:        entities.TransactionDebit,
				Description: "CASH WITHDRAWAL - NO CARD",
			})
		}()
	}

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))

	seen := make(map[int64]bool, broadcasts)
	for len(seen) < broadcasts {
		var record entities.TransactionRecord
		require.NoError(t, client.ReadJSON(&record))
		require.Equal(t, int64(1), record.AccountID)
		seen[record.ID] = true
	}

	wg.Wait()
}

func TestManagerDropsFailedSubscriber(t *testing.T) {
	manager := NewWebSocketManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, server := subscribeOne(t, manager, 1)

	// Kill the connection under the hub; the next broadcast fails to
	// write and must remove the subscriber.
	require.NoError(t, server.Close())

	manager.TransactionAppended(&entities.TransactionRecord{ID: 1, AccountID: 1})

	manager.mu.RLock()
	defer manager.mu.RUnlock()
	require.Empty(t, manager.subscribers)
}
