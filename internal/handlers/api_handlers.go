package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.openly.dev/pointy"

	"github.com/vertice/banking-demo/backend/internal/core/ports"
	"github.com/vertice/banking-demo/backend/internal/entities"
	"github.com/vertice/banking-demo/backend/internal/usecases"
)

var (
	_ ports.OrderService   = (*usecases.OrderService)(nil)
	_ ports.WalletService  = (*usecases.WalletService)(nil)
	_ ports.AccountService = (*usecases.AccountService)(nil)
)

type HTTPHandler struct {
	logger *slog.Logger

	accounts ports.AccountService
	orders   ports.OrderService
	wallets  ports.WalletService
}

func NewHTTPHandler(logger *slog.Logger, accounts ports.AccountService, orders ports.OrderService, wallets ports.WalletService) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger,
		accounts: accounts,
		orders:   orders,
		wallets:  wallets,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	// Withdrawal orders
	router.HandleFunc("/api/withdrawal-orders", h.IssueOrder).Methods("POST")
	router.HandleFunc("/api/withdrawal-orders/redeem", h.RedeemOrder).Methods("POST")

	// DeUna wallet
	router.HandleFunc("/api/deuna/recharge", h.Recharge).Methods("POST")
	router.HandleFunc("/api/deuna/qr/{customerId:[0-9]+}", h.PaymentQR).Methods("GET")
	router.HandleFunc("/api/deuna/scan/{payerId:[0-9]+}/{payeeId:[0-9]+}", h.ScanPrefill).Methods("GET")

	// Banca web
	router.HandleFunc("/api/accounts/{customerId:[0-9]+}", h.GetAccount).Methods("GET")
	router.HandleFunc("/api/accounts/{customerId:[0-9]+}/transactions", h.GetTransactions).Methods("GET")

	// Static demo pages - register last to avoid intercepting other routes.
	fs := http.FileServer(http.Dir("./static"))
	router.PathPrefix("/").Handler(http.StripPrefix("/", fs))
}

type issueOrderRequest struct {
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
	Phone     string `json:"phone"`
}

func (r issueOrderRequest) validate() (decimal.Decimal, error) {
	if r.AccountID <= 0 {
		return decimal.Zero, fmt.Errorf("account_id is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return decimal.Zero, fmt.Errorf("phone is required")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount is not a valid number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

type redeemOrderRequest struct {
	OTP   string `json:"otp"`
	Phone string `json:"phone"`
}

func (r redeemOrderRequest) validate() error {
	if strings.TrimSpace(r.OTP) == "" || strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("otp and phone are required")
	}

	return nil
}

type rechargeRequest struct {
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"`
}

func (r rechargeRequest) validate() (decimal.Decimal, error) {
	if r.AccountID <= 0 {
		return decimal.Zero, fmt.Errorf("account_id is required")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount is not a valid number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

type operationResponse struct {
	Success bool   `json:"success"`
	OTP     string `json:"otp,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *HTTPHandler) IssueOrder(w http.ResponseWriter, r *http.Request) {
	var req issueOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	otp, err := h.orders.IssueOrder(r.Context(), req.AccountID, amount, req.Phone)
	if err != nil {
		h.writeOperationError(w, r, "issue order", err)
		return
	}

	h.writeJSON(w, http.StatusOK, operationResponse{Success: true, OTP: otp})
}

func (h *HTTPHandler) RedeemOrder(w http.ResponseWriter, r *http.Request) {
	var req redeemOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := h.orders.RedeemOrder(r.Context(), strings.TrimSpace(req.OTP), strings.TrimSpace(req.Phone))
	if err != nil {
		h.writeOperationError(w, r, "redeem order", err)
		return
	}

	h.writeJSON(w, http.StatusOK, operationResponse{
		Success: true,
		Message: fmt.Sprintf("Withdrawal of $%s completed successfully.", amount.StringFixed(2)),
	})
}

func (h *HTTPHandler) Recharge(w http.ResponseWriter, r *http.Request) {
	var req rechargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = h.wallets.Recharge(r.Context(), req.AccountID, amount); err != nil {
		h.writeOperationError(w, r, "recharge", err)
		return
	}

	h.writeJSON(w, http.StatusOK, operationResponse{Success: true})
}

func (h *HTTPHandler) PaymentQR(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	qr, err := h.wallets.PaymentQR(r.Context(), customerID)
	if err != nil {
		h.writeOperationError(w, r, "payment qr", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"link":             qr.Link,
		"qr_b64":           qr.PNGBase64,
		"peer_customer_id": qr.PeerCustomerID,
	})
}

func (h *HTTPHandler) ScanPrefill(w http.ResponseWriter, r *http.Request) {
	payerID, err := pathID(r, "payerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payeeID, err := pathID(r, "payeeId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prefill, err := h.wallets.ScanPrefill(r.Context(), payerID, payeeID)
	if err != nil {
		h.writeOperationError(w, r, "scan prefill", err)
		return
	}

	h.writeJSON(w, http.StatusOK, prefill)
}

func (h *HTTPHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.accounts.GetSummary(r.Context(), customerID)
	if err != nil {
		h.writeOperationError(w, r, "get account", err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

func (h *HTTPHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var limit int
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil {
			http.Error(w, "limit is not a valid number", http.StatusBadRequest)
			return
		}
	}

	var txType *string
	if typeParam := strings.ToUpper(r.URL.Query().Get("type")); typeParam != "" {
		if typeParam != entities.TransactionDebit && typeParam != entities.TransactionCredit {
			http.Error(w, "type must be DEBIT or CREDIT", http.StatusBadRequest)
			return
		}
		txType = pointy.String(typeParam)
	}

	records, err := h.accounts.GetHistory(r.Context(), customerID, limit, txType)
	if err != nil {
		h.writeOperationError(w, r, "get transactions", err)
		return
	}

	if records == nil {
		records = []entities.TransactionRecord{}
	}

	h.writeJSON(w, http.StatusOK, records)
}

// writeOperationError maps business-rule failures to success=false
// results the demo pages understand. Unknown accounts are a 404 and
// store failures a 500; neither leaks details to the caller.
func (h *HTTPHandler) writeOperationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, entities.ErrInsufficientFunds),
		errors.Is(err, entities.ErrInvalidOrder),
		errors.Is(err, entities.ErrOrderExpired):
		h.writeJSON(w, http.StatusOK, operationResponse{Success: false, Message: err.Error()})
	case errors.Is(err, entities.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("Operation failed", "operation", op, "path", r.URL.Path, "error", err)
		h.writeJSON(w, http.StatusInternalServerError, operationResponse{Success: false, Message: "internal server error"})
	}
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", "error", err)
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}
