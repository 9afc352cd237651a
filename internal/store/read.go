package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
)

// LoadAccount returns the account with the given id.
func (s *Store) LoadAccount(ctx context.Context, id string) (ledger.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, phone, primary_balance, emergency_balance, created_at
		FROM accounts WHERE id = ?
	`, id)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.NotFoundf("account %s unknown", id)
	}
	if err != nil {
		return ledger.Account{}, unavailable("load account", err)
	}
	return a, nil
}

// ListAccounts returns all accounts ordered by display name.
func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, phone, primary_balance, emergency_balance, created_at
		FROM accounts
		ORDER BY display_name ASC, id ASC
	`)
	if err != nil {
		return nil, unavailable("list accounts", err)
	}
	defer rows.Close()

	accounts := []ledger.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, unavailable("list accounts", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list accounts", err)
	}
	return accounts, nil
}

// LoadTransaction returns the transaction with the given id.
func (s *Store) LoadTransaction(ctx context.Context, id string) (ledger.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, amount, status, channel, description, seq, created_at
		FROM transactions WHERE id = ?
	`, id)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, ledger.NotFoundf("transaction %s unknown", id)
	}
	if err != nil {
		return ledger.Transaction{}, unavailable("load transaction", err)
	}
	return tx, nil
}

// ListTransactions returns every transaction the account sent or received,
// newest first. Ordering uses seq (logical clock), with id as tiebreaker
// so results are deterministic.
func (s *Store) ListTransactions(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, amount, status, channel, description, seq, created_at
		FROM transactions
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY seq DESC, id ASC
	`, accountID, accountID)
	if err != nil {
		return nil, unavailable("list transactions", err)
	}
	defer rows.Close()

	txs := []ledger.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, unavailable("list transactions", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list transactions", err)
	}
	return txs, nil
}

// ListTransactionsByStatus returns every transaction in the given status
// in FIFO order of submission (ascending seq).
func (s *Store) ListTransactionsByStatus(ctx context.Context, status ledger.Status) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, amount, status, channel, description, seq, created_at
		FROM transactions
		WHERE status = ?
		ORDER BY seq ASC, id ASC
	`, string(status))
	if err != nil {
		return nil, unavailable("list transactions by status", err)
	}
	defer rows.Close()

	txs := []ledger.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, unavailable("list transactions by status", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list transactions by status", err)
	}
	return txs, nil
}

// ListMerchants returns merchants ordered by name, optionally restricted
// to essential services.
func (s *Store) ListMerchants(ctx context.Context, essentialOnly bool) ([]ledger.Merchant, error) {
	query := `SELECT id, account_id, name, category, essential FROM merchants`
	if essentialOnly {
		query += ` WHERE essential = 1`
	}
	query += ` ORDER BY name ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable("list merchants", err)
	}
	defer rows.Close()

	merchants := []ledger.Merchant{}
	for rows.Next() {
		var m ledger.Merchant
		var essential int
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Name, &m.Category, &essential); err != nil {
			return nil, unavailable("list merchants", err)
		}
		m.Essential = essential != 0
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list merchants", err)
	}
	return merchants, nil
}

// ListPendingEntries returns unresolved reconciliation entries in FIFO
// order of original submission (ascending seq).
func (s *Store) ListPendingEntries(ctx context.Context) ([]ledger.PendingEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, seq, attempts, last_attempt_at
		FROM pending_sync
		ORDER BY seq ASC, transaction_id ASC
	`)
	if err != nil {
		return nil, unavailable("list pending entries", err)
	}
	defer rows.Close()

	entries := []ledger.PendingEntry{}
	for rows.Next() {
		var e ledger.PendingEntry
		var lastAttempt string
		if err := rows.Scan(&e.TransactionID, &e.Seq, &e.Attempts, &lastAttempt); err != nil {
			return nil, unavailable("list pending entries", err)
		}
		if e.LastAttemptAt, err = decodeAttemptTime(lastAttempt); err != nil {
			return nil, unavailable("list pending entries", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list pending entries", err)
	}
	return entries, nil
}

// LoadMode returns the persisted connectivity mode, or KindNotFound if no
// mode has ever been saved.
func (s *Store) LoadMode(ctx context.Context) (ledger.Mode, error) {
	var mode string
	err := s.db.QueryRowContext(ctx, `SELECT mode FROM connectivity WHERE id = 1`).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ledger.NotFoundf("connectivity mode not persisted")
	}
	if err != nil {
		return "", unavailable("load connectivity mode", err)
	}
	return ledger.Mode(mode), nil
}

// MaxSeq returns the highest seq recorded in the ledger, 0 when empty.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM transactions`).Scan(&max); err != nil {
		return 0, unavailable("read max seq", err)
	}
	return max.Int64, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (ledger.Account, error) {
	var a ledger.Account
	var primary, emergency, createdAt string

	if err := sc.Scan(&a.ID, &a.DisplayName, &a.Phone, &primary, &emergency, &createdAt); err != nil {
		return ledger.Account{}, err
	}

	var err error
	if a.Primary, err = money.Parse(primary); err != nil {
		return ledger.Account{}, fmt.Errorf("account %s primary balance: %w", a.ID, err)
	}
	if a.Emergency, err = money.Parse(emergency); err != nil {
		return ledger.Account{}, fmt.Errorf("account %s emergency balance: %w", a.ID, err)
	}
	if a.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return ledger.Account{}, fmt.Errorf("account %s created_at: %w", a.ID, err)
	}
	return a, nil
}

func scanTransaction(sc scanner) (ledger.Transaction, error) {
	var tx ledger.Transaction
	var amount, status, channel, createdAt string

	if err := sc.Scan(&tx.ID, &tx.SenderID, &tx.ReceiverID, &amount, &status, &channel,
		&tx.Description, &tx.Seq, &createdAt); err != nil {
		return ledger.Transaction{}, err
	}

	var err error
	if tx.Amount, err = money.Parse(amount); err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s amount: %w", tx.ID, err)
	}
	if tx.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %s created_at: %w", tx.ID, err)
	}
	tx.Status = ledger.Status(status)
	tx.Channel = ledger.Channel(channel)
	return tx, nil
}
