package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pawfectBack/internal/models"
)

// fakeLedgerStore mirrors the repository contract: unique
// (user, transaction) inserts, conditional debits.
type fakeLedgerStore struct {
	entries  map[string]models.LedgerEntry
	balances map[int]models.UserBalance
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		entries:  make(map[string]models.LedgerEntry),
		balances: make(map[int]models.UserBalance),
	}
}

func (f *fakeLedgerStore) key(userID int, transactionID string) string {
	return fmt.Sprintf("%d/%s", userID, transactionID)
}

func (f *fakeLedgerStore) InsertCredit(ctx context.Context, entry models.LedgerEntry) error {
	k := f.key(entry.UserID, entry.TransactionID)
	if _, ok := f.entries[k]; ok {
		return models.ErrDuplicateTransaction
	}
	f.entries[k] = entry
	b := f.balances[entry.UserID]
	f.apply(&b, entry.ProductType, entry.Quantity)
	f.balances[entry.UserID] = b
	return nil
}

func (f *fakeLedgerStore) Debit(ctx context.Context, userID int, entitlementType string, quantity int) error {
	b := f.balances[userID]
	if b.Count(entitlementType) < quantity {
		return models.ErrInsufficientBalance
	}
	f.apply(&b, entitlementType, -quantity)
	f.balances[userID] = b
	return nil
}

func (f *fakeLedgerStore) apply(b *models.UserBalance, entitlementType string, delta int) {
	switch entitlementType {
	case models.EntitlementSuperLike:
		b.SuperLikes += delta
	case models.EntitlementBoost:
		b.Boosts += delta
	case models.EntitlementGift:
		b.Gifts += delta
	case models.EntitlementFilter:
		b.Filters += delta
	case models.EntitlementPhoto:
		b.Photos += delta
	case models.EntitlementVideo:
		b.Videos += delta
	}
}

func (f *fakeLedgerStore) GetBalance(ctx context.Context, userID int) (models.UserBalance, error) {
	return f.balances[userID], nil
}

func (f *fakeLedgerStore) ListByUser(ctx context.Context, userID int) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestLedgerCredit_AppliesOnce(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(newFakeLedgerStore())
	single := models.Entitlement{Type: models.EntitlementSuperLike, Quantity: 1}

	res, err := svc.Credit(ctx, 1, "txn_1", single, models.PlatformIOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duplicate {
		t.Error("first credit flagged as duplicate")
	}
	if res.Balance.SuperLikes != 1 {
		t.Errorf("balance = %d, want 1", res.Balance.SuperLikes)
	}

	// Identical replay: same balance, duplicate flag set.
	res, err = svc.Credit(ctx, 1, "txn_1", single, models.PlatformIOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Duplicate {
		t.Error("replay not flagged as duplicate")
	}
	if res.Balance.SuperLikes != 1 {
		t.Errorf("balance after replay = %d, want 1", res.Balance.SuperLikes)
	}

	// A new transaction stacks on top.
	res, err = svc.Credit(ctx, 1, "txn_2", models.Entitlement{Type: models.EntitlementSuperLike, Quantity: 10}, models.PlatformIOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Duplicate || res.Balance.SuperLikes != 11 {
		t.Errorf("balance = %d duplicate=%v, want 11 false", res.Balance.SuperLikes, res.Duplicate)
	}
}

func TestLedgerCredit_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(newFakeLedgerStore())

	t.Run("empty transaction id", func(t *testing.T) {
		if _, err := svc.Credit(ctx, 1, "  ", models.Entitlement{Type: models.EntitlementBoost, Quantity: 1}, models.PlatformIOS); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := svc.Credit(ctx, 1, "txn", models.Entitlement{Type: "coins", Quantity: 1}, models.PlatformIOS)
		if !errors.Is(err, models.ErrInvalidEntitlement) {
			t.Fatalf("expected ErrInvalidEntitlement, got %v", err)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		if _, err := svc.Credit(ctx, 1, "txn", models.Entitlement{Type: models.EntitlementBoost, Quantity: 0}, models.PlatformIOS); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestLedgerDebit_InsufficientLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(newFakeLedgerStore())

	if _, err := svc.Credit(ctx, 1, "txn_1", models.Entitlement{Type: models.EntitlementSuperLike, Quantity: 11}, models.PlatformAndroid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Debit(ctx, 1, models.EntitlementSuperLike, 20)
	if !errors.Is(err, models.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	balance, err := svc.GetBalance(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.SuperLikes != 11 {
		t.Errorf("balance mutated by rejected debit: %d", balance.SuperLikes)
	}
}

func TestLedgerConservation(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(newFakeLedgerStore())

	credits := []struct {
		txn string
		qty int
	}{
		{"txn_1", 1}, {"txn_2", 10}, {"txn_3", 5},
	}
	total := 0
	for _, c := range credits {
		if _, err := svc.Credit(ctx, 7, c.txn, models.Entitlement{Type: models.EntitlementBoost, Quantity: c.qty}, models.PlatformIOS); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		total += c.qty
	}

	debits := []int{3, 4}
	for _, q := range debits {
		if _, err := svc.Debit(ctx, 7, models.EntitlementBoost, q); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		total -= q
	}

	balance, err := svc.GetBalance(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Boosts != total {
		t.Errorf("balance = %d, want credits minus debits = %d", balance.Boosts, total)
	}
	if balance.Boosts < 0 {
		t.Error("balance must never be negative")
	}
}

func TestLedgerDebit_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewLedgerService(newFakeLedgerStore())

	if _, err := svc.Debit(ctx, 1, "coins", 1); !errors.Is(err, models.ErrInvalidEntitlement) {
		t.Fatalf("expected ErrInvalidEntitlement, got %v", err)
	}
	if _, err := svc.Debit(ctx, 1, models.EntitlementBoost, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestLedgerGetBalance_ZeroDefaults(t *testing.T) {
	svc := NewLedgerService(newFakeLedgerStore())
	balance, err := svc.GetBalance(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != (models.UserBalance{}) {
		t.Errorf("expected zero-value balance, got %+v", balance)
	}
}
