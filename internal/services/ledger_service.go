package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pawfectBack/internal/models"
)

// LedgerStore is the storage seam for the entitlement ledger. The MySQL
// implementation lives in repositories; tests use an in-memory fake.
type LedgerStore interface {
	InsertCredit(ctx context.Context, entry models.LedgerEntry) error
	Debit(ctx context.Context, userID int, entitlementType string, quantity int) error
	GetBalance(ctx context.Context, userID int) (models.UserBalance, error)
	ListByUser(ctx context.Context, userID int) ([]models.LedgerEntry, error)
}

// CreditResult reports the balance after a credit. Duplicate marks an
// idempotent replay: the balance is unchanged and the caller treats the call
// as a success.
type CreditResult struct {
	Duplicate bool
	Balance   models.UserBalance
}

// LedgerService applies validated purchases to balances exactly once per
// (user, transaction) and enforces sufficiency-checked debits.
type LedgerService struct {
	Store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{Store: store}
}

func (s *LedgerService) Credit(ctx context.Context, userID int, transactionID string, ent models.Entitlement, platform string) (CreditResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return CreditResult{}, errors.New("transaction id is required")
	}
	if !models.ValidEntitlementType(ent.Type) {
		return CreditResult{}, fmt.Errorf("%w: %s", models.ErrInvalidEntitlement, ent.Type)
	}
	if ent.Quantity <= 0 {
		return CreditResult{}, fmt.Errorf("quantity must be positive, got %d", ent.Quantity)
	}

	entry := models.LedgerEntry{
		ID:            uuid.NewString(),
		UserID:        userID,
		TransactionID: transactionID,
		ProductType:   ent.Type,
		Quantity:      ent.Quantity,
		Platform:      platform,
		Kind:          models.EntryKindCredit,
		Validated:     true,
		AppliedAt:     time.Now().UTC(),
	}

	duplicate := false
	if err := s.Store.InsertCredit(ctx, entry); err != nil {
		if !errors.Is(err, models.ErrDuplicateTransaction) {
			return CreditResult{}, fmt.Errorf("store credit: %w", err)
		}
		duplicate = true
	}

	balance, err := s.Store.GetBalance(ctx, userID)
	if err != nil {
		return CreditResult{}, fmt.Errorf("read balance: %w", err)
	}
	return CreditResult{Duplicate: duplicate, Balance: balance}, nil
}

func (s *LedgerService) Debit(ctx context.Context, userID int, entitlementType string, quantity int) (models.UserBalance, error) {
	if !models.ValidEntitlementType(entitlementType) {
		return models.UserBalance{}, fmt.Errorf("%w: %s", models.ErrInvalidEntitlement, entitlementType)
	}
	if quantity <= 0 {
		return models.UserBalance{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if err := s.Store.Debit(ctx, userID, entitlementType, quantity); err != nil {
		return models.UserBalance{}, err
	}
	return s.Store.GetBalance(ctx, userID)
}

func (s *LedgerService) GetBalance(ctx context.Context, userID int) (models.UserBalance, error) {
	return s.Store.GetBalance(ctx, userID)
}

func (s *LedgerService) History(ctx context.Context, userID int) ([]models.LedgerEntry, error) {
	return s.Store.ListByUser(ctx, userID)
}
