package models

import "strconv"

// AppleVerifyResponse is the body returned by the verifyReceipt endpoint.
// Timestamps arrive as millisecond strings.
type AppleVerifyResponse struct {
	Status            int                       `json:"status"`
	Environment       string                    `json:"environment"`
	LatestReceiptInfo []AppleReceiptTransaction `json:"latest_receipt_info"`
	Receipt           struct {
		BundleID string                    `json:"bundle_id"`
		InApp    []AppleReceiptTransaction `json:"in_app"`
	} `json:"receipt"`
}

type AppleReceiptTransaction struct {
	TransactionID         string `json:"transaction_id"`
	OriginalTransactionID string `json:"original_transaction_id"`
	ProductID             string `json:"product_id"`
	PurchaseDateMS        string `json:"purchase_date_ms"`
	ExpiresDateMS         string `json:"expires_date_ms"`
}

// PurchaseDateMillis returns the purchase timestamp, zero when absent or malformed.
func (t AppleReceiptTransaction) PurchaseDateMillis() int64 {
	return parseMillis(t.PurchaseDateMS)
}

// ExpiresDateMillis returns the expiry timestamp, zero for non-subscription transactions.
func (t AppleReceiptTransaction) ExpiresDateMillis() int64 {
	return parseMillis(t.ExpiresDateMS)
}

func parseMillis(s string) int64 {
	if s == "" {
		return 0
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}
