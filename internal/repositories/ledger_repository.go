package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"

	"pawfectBack/internal/models"
)

var ErrNotFound = errors.New("repositories: not found")

// LedgerRepository persists the append-only entitlement ledger and the
// per-user balance counters. Idempotency comes from the unique
// (user_id, transaction_id) key, not from a read-then-write check, so
// concurrent duplicate submissions cannot both commit.
type LedgerRepository struct {
	DB   *sql.DB
	once sync.Once
	err  error
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

func (r *LedgerRepository) ensureSchema(ctx context.Context) error {
	r.once.Do(func() {
		const ledgerDDL = `
CREATE TABLE IF NOT EXISTS entitlement_ledger (
  id CHAR(36) NOT NULL,
  user_id INT NOT NULL,
  transaction_id VARCHAR(255) NOT NULL,
  product_type VARCHAR(32) NOT NULL,
  quantity INT NOT NULL,
  platform VARCHAR(16) NOT NULL DEFAULT '',
  entry_kind VARCHAR(16) NOT NULL DEFAULT 'credit',
  validated TINYINT(1) NOT NULL DEFAULT 1,
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uniq_user_transaction (user_id, transaction_id),
  KEY idx_user_id (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
		if _, r.err = r.DB.ExecContext(ctx, ledgerDDL); r.err != nil {
			return
		}

		const balancesDDL = `
CREATE TABLE IF NOT EXISTS user_balances (
  user_id INT NOT NULL,
  super_likes INT NOT NULL DEFAULT 0,
  boosts INT NOT NULL DEFAULT 0,
  gifts INT NOT NULL DEFAULT 0,
  filters INT NOT NULL DEFAULT 0,
  photos INT NOT NULL DEFAULT 0,
  videos INT NOT NULL DEFAULT 0,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`
		_, r.err = r.DB.ExecContext(ctx, balancesDDL)
	})
	return r.err
}

// InsertCredit appends a ledger entry and increments the balance column in
// one transaction. A duplicate (user_id, transaction_id) surfaces as
// models.ErrDuplicateTransaction with nothing written.
func (r *LedgerRepository) InsertCredit(ctx context.Context, entry models.LedgerEntry) (err error) {
	if err = r.ensureSchema(ctx); err != nil {
		return err
	}
	column, ok := balanceColumn(entry.ProductType)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrInvalidEntitlement, entry.ProductType)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO entitlement_ledger (id, user_id, transaction_id, product_type, quantity, platform, entry_kind, validated, applied_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.TransactionID,
		entry.ProductType,
		entry.Quantity,
		entry.Platform,
		entry.Kind,
		entry.Validated,
		entry.AppliedAt,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			err = models.ErrDuplicateTransaction
		}
		return err
	}

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO user_balances (user_id, %[1]s) VALUES (?, ?)
ON DUPLICATE KEY UPDATE %[1]s = %[1]s + VALUES(%[1]s)`, column),
		entry.UserID, entry.Quantity,
	)
	return err
}

// Debit decrements the balance column with a single conditional update.
// Zero affected rows means the balance was insufficient (or absent) and
// nothing was mutated.
func (r *LedgerRepository) Debit(ctx context.Context, userID int, entitlementType string, quantity int) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	column, ok := balanceColumn(entitlementType)
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrInvalidEntitlement, entitlementType)
	}

	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`
UPDATE user_balances SET %[1]s = %[1]s - ? WHERE user_id = ? AND %[1]s >= ?`, column),
		quantity, userID, quantity,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrInsufficientBalance
	}
	return nil
}

// GetBalance returns zero-valued counters when the user has no balance row.
func (r *LedgerRepository) GetBalance(ctx context.Context, userID int) (models.UserBalance, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return models.UserBalance{}, err
	}
	var b models.UserBalance
	err := r.DB.QueryRowContext(ctx, `
SELECT super_likes, boosts, gifts, filters, photos, videos
FROM user_balances WHERE user_id = ?`, userID,
	).Scan(&b.SuperLikes, &b.Boosts, &b.Gifts, &b.Filters, &b.Photos, &b.Videos)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserBalance{}, nil
	}
	return b, err
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID int) ([]models.LedgerEntry, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, user_id, transaction_id, product_type, quantity, platform, entry_kind, validated, applied_at
FROM entitlement_ledger
WHERE user_id = ?
ORDER BY applied_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TransactionID, &e.ProductType, &e.Quantity, &e.Platform, &e.Kind, &e.Validated, &e.AppliedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// balanceColumn whitelists the column per entitlement type; identifiers are
// never taken from request input directly.
func balanceColumn(entitlementType string) (string, bool) {
	switch entitlementType {
	case models.EntitlementSuperLike:
		return "super_likes", true
	case models.EntitlementBoost:
		return "boosts", true
	case models.EntitlementGift:
		return "gifts", true
	case models.EntitlementFilter:
		return "filters", true
	case models.EntitlementPhoto:
		return "photos", true
	case models.EntitlementVideo:
		return "videos", true
	default:
		return "", false
	}
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
