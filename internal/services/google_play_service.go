package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	androidpublisher "google.golang.org/api/androidpublisher/v3"

	"pawfectBack/internal/models"
)

const googlePlayBaseURL = "https://androidpublisher.googleapis.com"

// AccessTokenSource provides a bearer token for the Play Developer API.
type AccessTokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type GooglePlayConfig struct {
	PackageName string

	// AllowUnverified skips store verification entirely. Development only:
	// the constructor rejects it when Environment is "production".
	AllowUnverified bool
	Environment     string

	// Optional overrides, used by tests.
	BaseURL    string
	HTTPClient *http.Client
}

// GooglePlayService verifies purchase tokens against the Play Developer API
// purchase-status endpoint.
type GooglePlayService struct {
	packageName     string
	baseURL         string
	tokens          AccessTokenSource
	allowUnverified bool
	client          *http.Client
}

func NewGooglePlayService(cfg GooglePlayConfig, tokens AccessTokenSource) (*GooglePlayService, error) {
	if cfg.AllowUnverified && strings.EqualFold(strings.TrimSpace(cfg.Environment), "production") {
		return nil, errors.New("google iap: unverified purchases cannot be enabled in production")
	}
	cfg.PackageName = strings.TrimSpace(cfg.PackageName)
	if !cfg.AllowUnverified {
		if cfg.PackageName == "" {
			return nil, errors.New("google iap: package name is required")
		}
		if tokens == nil {
			return nil, errors.New("google iap: token source is required")
		}
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googlePlayBaseURL
	}
	return &GooglePlayService{
		packageName:     cfg.PackageName,
		baseURL:         strings.TrimRight(baseURL, "/"),
		tokens:          tokens,
		allowUnverified: cfg.AllowUnverified,
		client:          client,
	}, nil
}

// VerifyPurchase issues one authenticated GET for the purchase token.
// purchaseState 0 is purchased, 1 canceled or refunded, 2 pending.
func (s *GooglePlayService) VerifyPurchase(ctx context.Context, productID, purchaseToken string) models.ValidationResult {
	productID = strings.TrimSpace(productID)
	purchaseToken = strings.TrimSpace(purchaseToken)
	if productID == "" || purchaseToken == "" {
		return invalidResult(models.CodeInvalidReceipt, "product_id and purchase_token are required")
	}

	if s.allowUnverified && s.tokens == nil {
		log.Printf("[IAP] UNVERIFIED google purchase accepted product_id=%q token_len=%d", productID, len(purchaseToken))
		return models.ValidationResult{
			Valid:         true,
			ProductID:     productID,
			TransactionID: purchaseToken,
			Environment:   "development",
		}
	}

	token, err := s.tokens.AccessToken(ctx)
	if err != nil {
		log.Printf("[IAP] google oauth failed: %v", err)
		return invalidResult(models.CodeStoreUnavailable, "could not authenticate with google play")
	}

	endpoint := fmt.Sprintf("%s/androidpublisher/v3/applications/%s/purchases/products/%s/tokens/%s",
		s.baseURL,
		url.PathEscape(s.packageName),
		url.PathEscape(productID),
		url.PathEscape(purchaseToken),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return invalidResult(models.CodeStoreUnavailable, "could not reach google play")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return invalidResult(models.CodeStoreUnavailable, "google play is unavailable")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return invalidResult(models.CodeInvalidReceipt, "google play rejected the purchase token")
	default:
		return invalidResult(models.CodeStoreUnavailable, "google play is unavailable")
	}

	var purchase androidpublisher.ProductPurchase
	if err := json.NewDecoder(resp.Body).Decode(&purchase); err != nil {
		return invalidResult(models.CodeStoreUnavailable, "could not decode google play response")
	}

	switch purchase.PurchaseState {
	case 0:
		transactionID := purchase.OrderId
		if transactionID == "" {
			transactionID = purchaseToken
		}
		return models.ValidationResult{
			Valid:         true,
			ProductID:     productID,
			TransactionID: transactionID,
			Environment:   "production",
		}
	case 1:
		return invalidResult(models.CodeInvalidReceipt,
			fmt.Sprintf("purchase %s was canceled or refunded", purchase.OrderId))
	default:
		return invalidResult(models.CodeInvalidReceipt, "purchase payment is still pending")
	}
}
