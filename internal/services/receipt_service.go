package services

import (
	"context"
	"fmt"

	"pawfectBack/internal/models"
)

// AppleValidator and GoogleValidator are the per-platform seams; the concrete
// services satisfy them and tests substitute stubs.
type AppleValidator interface {
	VerifyReceipt(ctx context.Context, receiptData, transactionID string) models.ValidationResult
}

type GoogleValidator interface {
	VerifyPurchase(ctx context.Context, productID, purchaseToken string) models.ValidationResult
}

// ReceiptService routes a validation request to the platform validator.
// A nil validator means the platform is not configured and fails closed.
type ReceiptService struct {
	Apple  AppleValidator
	Google GoogleValidator
}

func NewReceiptService(apple AppleValidator, google GoogleValidator) *ReceiptService {
	return &ReceiptService{Apple: apple, Google: google}
}

func (s *ReceiptService) Validate(ctx context.Context, req models.PurchaseRequest) models.ValidationResult {
	switch req.Platform {
	case models.PlatformIOS:
		if s.Apple == nil {
			return invalidResult(models.CodeConfigurationError, "apple iap is not configured")
		}
		return s.Apple.VerifyReceipt(ctx, req.Receipt, req.TransactionID)
	case models.PlatformAndroid:
		if s.Google == nil {
			return invalidResult(models.CodeConfigurationError, "google iap is not configured")
		}
		return s.Google.VerifyPurchase(ctx, req.ProductID, req.PurchaseToken)
	default:
		return invalidResult(models.CodeInvalidReceipt, fmt.Sprintf("unsupported platform: %q", req.Platform))
	}
}
