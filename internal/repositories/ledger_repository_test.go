package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"

	"pawfectBack/internal/models"
)

func TestBalanceColumn(t *testing.T) {
	tests := []struct {
		entitlementType string
		wantColumn      string
		wantOK          bool
	}{
		{models.EntitlementSuperLike, "super_likes", true},
		{models.EntitlementBoost, "boosts", true},
		{models.EntitlementGift, "gifts", true},
		{models.EntitlementFilter, "filters", true},
		{models.EntitlementPhoto, "photos", true},
		{models.EntitlementVideo, "videos", true},
		{"coins", "", false},
		{"", "", false},
		{"super_likes; DROP TABLE user_balances", "", false},
	}
	for _, tt := range tests {
		column, ok := balanceColumn(tt.entitlementType)
		if column != tt.wantColumn || ok != tt.wantOK {
			t.Errorf("balanceColumn(%q) = (%q, %v), want (%q, %v)",
				tt.entitlementType, column, ok, tt.wantColumn, tt.wantOK)
		}
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	t.Run("mysql duplicate key", func(t *testing.T) {
		err := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-txn_1' for key 'uniq_user_transaction'"}
		if !isDuplicateEntry(err) {
			t.Error("1062 must be detected as a duplicate")
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("insert entry: %w", &mysql.MySQLError{Number: 1062})
		if !isDuplicateEntry(err) {
			t.Error("wrapped 1062 must be detected")
		}
	})

	t.Run("other mysql error", func(t *testing.T) {
		if isDuplicateEntry(&mysql.MySQLError{Number: 1213}) {
			t.Error("deadlock is not a duplicate")
		}
	})

	t.Run("non-mysql error", func(t *testing.T) {
		if isDuplicateEntry(errors.New("boom")) {
			t.Error("generic error is not a duplicate")
		}
	})
}
