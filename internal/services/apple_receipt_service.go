package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pawfectBack/internal/models"
)

const (
	appleProdVerifyURL    = "https://buy.itunes.apple.com/verifyReceipt"
	appleSandboxVerifyURL = "https://sandbox.itunes.apple.com/verifyReceipt"

	// Receipt is from the sandbox but was sent to production. The one
	// automatic retry this service performs.
	appleStatusSandboxReceipt = 21007
)

type AppleReceiptConfig struct {
	SharedSecret string
	BundleID     string

	// Optional overrides, used by tests.
	ProductionURL string
	SandboxURL    string
	HTTPClient    *http.Client
}

// AppleReceiptService verifies base64 receipt blobs against Apple's
// verifyReceipt endpoint. Store-side rejections and network failures are
// converted into a ValidationResult; nothing is thrown past this boundary.
type AppleReceiptService struct {
	sharedSecret  string
	bundleID      string
	productionURL string
	sandboxURL    string
	client        *http.Client
}

func NewAppleReceiptService(cfg AppleReceiptConfig) (*AppleReceiptService, error) {
	if strings.TrimSpace(cfg.SharedSecret) == "" {
		return nil, errors.New("apple iap: shared secret is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	prodURL := cfg.ProductionURL
	if prodURL == "" {
		prodURL = appleProdVerifyURL
	}
	sandboxURL := cfg.SandboxURL
	if sandboxURL == "" {
		sandboxURL = appleSandboxVerifyURL
	}
	return &AppleReceiptService{
		sharedSecret:  strings.TrimSpace(cfg.SharedSecret),
		bundleID:      strings.TrimSpace(cfg.BundleID),
		productionURL: prodURL,
		sandboxURL:    sandboxURL,
		client:        client,
	}, nil
}

// VerifyReceipt posts the receipt to production first and retries exactly once
// against the sandbox endpoint on status 21007. When transactionID is set the
// matching transaction is selected, otherwise the most recent purchase.
func (s *AppleReceiptService) VerifyReceipt(ctx context.Context, receiptData, transactionID string) models.ValidationResult {
	receiptData = strings.TrimSpace(receiptData)
	if receiptData == "" {
		return invalidResult(models.CodeInvalidReceipt, "receipt data is empty")
	}

	resp, err := s.verify(ctx, s.productionURL, receiptData)
	if err != nil {
		return invalidResult(models.CodeStoreUnavailable, "apple verification service is unavailable")
	}
	if resp.Status == appleStatusSandboxReceipt {
		resp, err = s.verify(ctx, s.sandboxURL, receiptData)
		if err != nil {
			return invalidResult(models.CodeStoreUnavailable, "apple verification service is unavailable")
		}
	}
	if resp.Status != 0 {
		return invalidResult(appleStatusCode(resp.Status), appleStatusMessage(resp.Status))
	}
	if s.bundleID != "" && resp.Receipt.BundleID != "" && resp.Receipt.BundleID != s.bundleID {
		return invalidResult(models.CodeInvalidReceipt, "receipt belongs to another application")
	}

	txn, ok := selectTransaction(resp, transactionID)
	if !ok {
		return invalidResult(models.CodeInvalidReceipt, "transaction not found in receipt")
	}
	if exp := txn.ExpiresDateMillis(); exp > 0 && exp < time.Now().UnixMilli() {
		res := invalidResult(models.CodeInvalidReceipt, "subscription has expired")
		res.ExpiresAtMillis = exp
		return res
	}

	return models.ValidationResult{
		Valid:           true,
		ProductID:       txn.ProductID,
		TransactionID:   txn.TransactionID,
		Environment:     resp.Environment,
		ExpiresAtMillis: txn.ExpiresDateMillis(),
	}
}

func (s *AppleReceiptService) verify(ctx context.Context, endpoint, receiptData string) (models.AppleVerifyResponse, error) {
	payload := map[string]any{
		"receipt-data":             receiptData,
		"password":                 s.sharedSecret,
		"exclude-old-transactions": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return models.AppleVerifyResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return models.AppleVerifyResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.AppleVerifyResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.AppleVerifyResponse{}, fmt.Errorf("apple verifyReceipt: %s", resp.Status)
	}

	var out models.AppleVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.AppleVerifyResponse{}, err
	}
	return out, nil
}

// selectTransaction prefers latest_receipt_info and falls back to in_app,
// which subscription-less receipts populate instead.
func selectTransaction(resp models.AppleVerifyResponse, transactionID string) (models.AppleReceiptTransaction, bool) {
	candidates := resp.LatestReceiptInfo
	if len(candidates) == 0 {
		candidates = resp.Receipt.InApp
	}
	if len(candidates) == 0 {
		return models.AppleReceiptTransaction{}, false
	}

	if transactionID != "" {
		for _, txn := range candidates {
			if txn.TransactionID == transactionID {
				return txn, true
			}
		}
		return models.AppleReceiptTransaction{}, false
	}

	newest := candidates[0]
	for _, txn := range candidates[1:] {
		if txn.PurchaseDateMillis() > newest.PurchaseDateMillis() {
			newest = txn
		}
	}
	return newest, true
}

func appleStatusCode(status int) string {
	switch status {
	case 21005, 21009:
		return models.CodeStoreUnavailable
	default:
		return models.CodeInvalidReceipt
	}
}

func appleStatusMessage(status int) string {
	switch status {
	case 21000:
		return "the App Store could not read the request"
	case 21002:
		return "receipt data was malformed or missing"
	case 21003:
		return "receipt could not be authenticated"
	case 21004:
		return "shared secret does not match the account"
	case 21005:
		return "the receipt server is temporarily unavailable"
	case 21006:
		return "receipt is valid but the subscription has expired"
	case 21008:
		return "production receipt was sent to the sandbox environment"
	case 21010:
		return "the purchase account cannot be found or has been deleted"
	default:
		return fmt.Sprintf("receipt rejected with status %d", status)
	}
}

func invalidResult(code, message string) models.ValidationResult {
	return models.ValidationResult{Valid: false, Code: code, Message: message}
}
