package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/paisapp/paisa/internal/ledger"
)

// timeLayout is the canonical on-disk timestamp format.
const timeLayout = time.RFC3339Nano

// SaveAccount inserts or replaces an account row, including both balances.
func (s *Store) SaveAccount(ctx context.Context, a ledger.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, display_name, phone, primary_balance, emergency_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name      = excluded.display_name,
			phone             = excluded.phone,
			primary_balance   = excluded.primary_balance,
			emergency_balance = excluded.emergency_balance
	`, a.ID, a.DisplayName, a.Phone, a.Primary.String(), a.Emergency.String(), a.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return unavailable("save account", err)
	}
	return nil
}

// AppendTransaction adds a transaction to the append-only ledger.
// Re-appending an existing id is rejected: the ledger never rewrites.
func (s *Store) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, sender_id, receiver_id, amount, status, channel, description, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, tx.ID, tx.SenderID, tx.ReceiverID, tx.Amount.String(), string(tx.Status), string(tx.Channel),
		tx.Description, tx.Seq, tx.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return unavailable("append transaction", err)
	}
	return nil
}

// UpdateTransactionStatus records a lifecycle transition after verifying
// the edge is legal. Runs read-check-write in one database transaction so
// a concurrent update cannot slip between the check and the write.
func (s *Store) UpdateTransactionStatus(ctx context.Context, id string, status ledger.Status) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("update transaction status", err)
	}
	defer dbtx.Rollback()

	var current string
	err = dbtx.QueryRowContext(ctx, `SELECT status FROM transactions WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.NotFoundf("transaction %s unknown", id)
	}
	if err != nil {
		return unavailable("update transaction status", err)
	}

	if !ledger.CanTransition(ledger.Status(current), status) {
		return ledger.InvalidRequestf("transaction %s: illegal transition %s -> %s", id, current, status)
	}

	if _, err := dbtx.ExecContext(ctx, `UPDATE transactions SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return unavailable("update transaction status", err)
	}

	if err := dbtx.Commit(); err != nil {
		return unavailable("update transaction status", err)
	}
	return nil
}

// SaveMerchant inserts or replaces a merchant row.
func (s *Store) SaveMerchant(ctx context.Context, m ledger.Merchant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchants (id, account_id, name, category, essential)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			name       = excluded.name,
			category   = excluded.category,
			essential  = excluded.essential
	`, m.ID, m.AccountID, m.Name, m.Category, boolToInt(m.Essential))
	if err != nil {
		return unavailable("save merchant", err)
	}
	return nil
}

// SavePendingEntry persists a reconciliation-queue entry.
// Uses ON CONFLICT DO NOTHING for idempotency on the transaction id.
func (s *Store) SavePendingEntry(ctx context.Context, e ledger.PendingEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_sync (transaction_id, seq, attempts, last_attempt_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO NOTHING
	`, e.TransactionID, e.Seq, e.Attempts, encodeAttemptTime(e.LastAttemptAt))
	if err != nil {
		return unavailable("save pending entry", err)
	}
	return nil
}

// UpdatePendingEntry records attempt counters after a reconciliation pass.
func (s *Store) UpdatePendingEntry(ctx context.Context, e ledger.PendingEntry) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pending_sync SET attempts = ?, last_attempt_at = ? WHERE transaction_id = ?
	`, e.Attempts, encodeAttemptTime(e.LastAttemptAt), e.TransactionID)
	if err != nil {
		return unavailable("update pending entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("update pending entry", err)
	}
	if n == 0 {
		return ledger.NotFoundf("pending entry for transaction %s unknown", e.TransactionID)
	}
	return nil
}

// DeletePendingEntry removes a resolved entry. A no-op if absent.
func (s *Store) DeletePendingEntry(ctx context.Context, transactionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_sync WHERE transaction_id = ?`, transactionID); err != nil {
		return unavailable("delete pending entry", err)
	}
	return nil
}

// SaveMode persists the connectivity mode into the single connectivity row.
func (s *Store) SaveMode(ctx context.Context, m ledger.Mode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connectivity (id, mode, changed_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode       = excluded.mode,
			changed_at = excluded.changed_at
	`, string(m), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return unavailable("save connectivity mode", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// encodeAttemptTime stores the zero time as an empty string so entries
// that have never been attempted stay distinguishable.
func encodeAttemptTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func decodeAttemptTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse attempt time %q: %w", s, err)
	}
	return t, nil
}
