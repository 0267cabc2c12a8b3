package models

import "time"

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// Entitlement types for consumable in-app currency.
const (
	EntitlementSuperLike = "superlike"
	EntitlementBoost     = "boost"
	EntitlementFilter    = "filter"
	EntitlementPhoto     = "photo"
	EntitlementVideo     = "video"
	EntitlementGift      = "gift"
)

// Machine-readable result codes carried alongside human-readable messages.
const (
	CodeConfigurationError   = "configuration_error"
	CodeInvalidReceipt       = "invalid_receipt"
	CodeTransactionMismatch  = "transaction_mismatch"
	CodeUnknownProduct       = "unknown_product"
	CodeInsufficientBalance  = "insufficient_balance"
	CodeDuplicateTransaction = "duplicate_transaction"
	CodeStoreUnavailable     = "store_unavailable"
	CodeUnauthorized         = "unauthorized"
	CodeNotFound             = "not_found"
)

const (
	EntryKindCredit = "credit"
	EntryKindDebit  = "debit"
)

// PurchaseRequest is the client-supplied proof of purchase.
type PurchaseRequest struct {
	ProductID     string `json:"product_id"`
	TransactionID string `json:"transaction_id"`
	Receipt       string `json:"receipt"`
	Platform      string `json:"platform"`
	PurchaseToken string `json:"purchase_token,omitempty"`
}

// ValidationResult is produced once per validation call. Store-side
// rejections land here as Valid=false with a code and message; no error
// crosses into the ledger layer.
type ValidationResult struct {
	Valid           bool
	ProductID       string
	TransactionID   string
	Environment     string
	ExpiresAtMillis int64
	Code            string
	Message         string
}

// LedgerEntry is one immutable applied purchase. The unique
// (user_id, transaction_id) pair is the idempotency witness.
type LedgerEntry struct {
	ID            string    `json:"id"`
	UserID        int       `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	ProductType   string    `json:"product_type"`
	Quantity      int       `json:"quantity"`
	Platform      string    `json:"platform"`
	Kind          string    `json:"kind"`
	Validated     bool      `json:"validated"`
	AppliedAt     time.Time `json:"applied_at"`
}

// UserBalance is the running sum of credits minus debits per type.
type UserBalance struct {
	SuperLikes int `json:"superLikes"`
	Boosts     int `json:"boosts"`
	Gifts      int `json:"gifts"`
	Filters    int `json:"filters"`
	Photos     int `json:"photos"`
	Videos     int `json:"videos"`
}

// Count returns the balance for an entitlement type, zero for unknown types.
func (b UserBalance) Count(entitlementType string) int {
	switch entitlementType {
	case EntitlementSuperLike:
		return b.SuperLikes
	case EntitlementBoost:
		return b.Boosts
	case EntitlementGift:
		return b.Gifts
	case EntitlementFilter:
		return b.Filters
	case EntitlementPhoto:
		return b.Photos
	case EntitlementVideo:
		return b.Videos
	default:
		return 0
	}
}

// Entitlement is a typed, quantified grant resolved from a product id.
type Entitlement struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

func ValidEntitlementType(t string) bool {
	switch t {
	case EntitlementSuperLike, EntitlementBoost, EntitlementFilter,
		EntitlementPhoto, EntitlementVideo, EntitlementGift:
		return true
	}
	return false
}
