package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"pawfectBack/internal/models"
	"pawfectBack/internal/services"
)

// UserDirectory is the identity lookup the purchase flow needs for its
// unknown-user check.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

// PurchaseHandler orchestrates receipt verification, catalog resolution and
// the entitlement ledger.
type PurchaseHandler struct {
	Receipts *services.ReceiptService
	Catalog  *services.CatalogService
	Ledger   *services.LedgerService
	Users    UserDirectory
}

func NewPurchaseHandler(receipts *services.ReceiptService, catalog *services.CatalogService, ledger *services.LedgerService, users UserDirectory) *PurchaseHandler {
	return &PurchaseHandler{
		Receipts: receipts,
		Catalog:  catalog,
		Ledger:   ledger,
		Users:    users,
	}
}

// VerifyPurchase validates the proof of purchase and credits the balance.
// A replayed transaction id is a 200 with duplicate=true and an unchanged
// balance.
func (h *PurchaseHandler) VerifyPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, models.CodeUnauthorized, "unauthorized")
		return
	}
	if _, err := h.Users.GetUserByID(r.Context(), userID); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			jsonError(w, http.StatusNotFound, models.CodeNotFound, "user not found")
			return
		}
		jsonError(w, http.StatusInternalServerError, models.CodeStoreUnavailable, "could not load user")
		return
	}

	var req models.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, models.CodeInvalidReceipt, "invalid body: "+err.Error())
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.TransactionID = strings.TrimSpace(req.TransactionID)
	req.Receipt = strings.TrimSpace(req.Receipt)
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	req.PurchaseToken = strings.TrimSpace(req.PurchaseToken)

	log.Printf("[IAP] incoming user=%d platform=%q product_id=%q txn=%q", userID, req.Platform, req.ProductID, req.TransactionID)

	result := h.Receipts.Validate(r.Context(), req)
	if !result.Valid {
		log.Printf("[IAP] verify failed user=%d platform=%q code=%s msg=%q", userID, req.Platform, result.Code, result.Message)
		jsonError(w, statusForCode(result.Code), result.Code, result.Message)
		return
	}

	if req.TransactionID != "" && result.TransactionID != "" && req.TransactionID != result.TransactionID {
		jsonError(w, http.StatusBadRequest, models.CodeTransactionMismatch, "validated transaction does not match the request")
		return
	}
	transactionID := result.TransactionID
	if transactionID == "" {
		transactionID = req.TransactionID
	}
	productID := result.ProductID
	if productID == "" {
		productID = req.ProductID
	}

	entitlement, err := h.Catalog.Resolve(productID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, models.CodeUnknownProduct, "unknown product: "+productID)
		return
	}

	credit, err := h.Ledger.Credit(r.Context(), userID, transactionID, entitlement, req.Platform)
	if err != nil {
		log.Printf("[IAP] credit failed user=%d txn=%q err=%v", userID, transactionID, err)
		jsonError(w, http.StatusInternalServerError, models.CodeStoreUnavailable, "could not apply purchase")
		return
	}

	message := "purchase applied"
	if credit.Duplicate {
		message = "purchase was already applied"
	}
	log.Printf("[IAP] credit ok user=%d txn=%q type=%s qty=%d duplicate=%v",
		userID, transactionID, entitlement.Type, entitlement.Quantity, credit.Duplicate)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"duplicate":      credit.Duplicate,
		"message":        message,
		"transaction_id": transactionID,
		"balance":        credit.Balance,
	})
}

func (h *PurchaseHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, models.CodeUnauthorized, "unauthorized")
		return
	}
	balance, err := h.Ledger.GetBalance(r.Context(), userID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, models.CodeStoreUnavailable, "could not read balance")
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// UseItem debits a consumable. The sufficiency check and the decrement are a
// single conditional update in the repository, so concurrent debits cannot
// overdraw.
func (h *PurchaseHandler) UseItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, models.CodeUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Type     string `json:"type"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, models.CodeInvalidReceipt, "invalid body: "+err.Error())
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	balance, err := h.Ledger.Debit(r.Context(), userID, req.Type, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientBalance):
			current, berr := h.Ledger.GetBalance(r.Context(), userID)
			if berr != nil {
				jsonError(w, http.StatusInternalServerError, models.CodeStoreUnavailable, "could not read balance")
				return
			}
			writeJSON(w, http.StatusForbidden, map[string]any{
				"success": false,
				"code":    models.CodeInsufficientBalance,
				"message": "not enough " + req.Type + " balance",
				"balance": current,
			})
		case errors.Is(err, models.ErrInvalidEntitlement):
			jsonError(w, http.StatusBadRequest, models.CodeInvalidReceipt, "invalid item type: "+req.Type)
		default:
			jsonError(w, http.StatusInternalServerError, models.CodeStoreUnavailable, "could not use item")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"balance": balance,
	})
}

func (h *PurchaseHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(r)
	if !ok {
		jsonError(w, http.StatusUnauthorized, models.CodeUnauthorized, "unauthorized")
		return
	}
	entries, err := h.Ledger.History(r.Context(), userID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, models.CodeStoreUnavailable, "could not read history")
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// statusForCode maps validation result codes onto HTTP statuses: client
// errors are 4xx, missing configuration 503, failing store backends 502.
func statusForCode(code string) int {
	switch code {
	case models.CodeConfigurationError:
		return http.StatusServiceUnavailable
	case models.CodeStoreUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
