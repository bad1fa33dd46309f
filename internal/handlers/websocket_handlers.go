package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vertice/banking-demo/backend/internal/core/ports"
	"github.com/vertice/banking-demo/backend/internal/entities"
)

// WebSocketHandler serves the account activity feed consumed by the
// banca-web pages.
type WebSocketHandler struct {
	logger           *slog.Logger
	accounts         ports.AccountService
	websocketManager *Manager
}

func NewWebSocketHandler(
	logger *slog.Logger,
	accounts ports.AccountService,
	websocketManager *Manager,
) *WebSocketHandler {
	return &WebSocketHandler{
		logger:           logger,
		accounts:         accounts,
		websocketManager: websocketManager,
	}
}

func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/accounts/{customerId:[0-9]+}", h.HandleConnection)
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.accounts.GetSummary(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, entities.ErrAccountNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := h.websocketManager.Upgrade(w, r)
	if err != nil {
		h.logger.Error("Error upgrading connection", "error", err)
		return
	}

	h.logger.Info("New activity feed subscriber", "account_id", summary.ID)

	h.websocketManager.Subscribe(summary.ID, conn)

	// Keep the connection open; drop the subscription once the page
	// goes away.
	for {
		if _, _, readErr := conn.ReadMessage(); readErr != nil {
			h.websocketManager.Unsubscribe(summary.ID, conn)
			conn.Close()
			break
		}
	}
}
