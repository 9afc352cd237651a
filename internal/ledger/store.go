package ledger

import "context"

// Store is the durable storage contract the engine runs against.
//
// Implementations must translate their failures into the ledger error
// taxonomy: unknown rows map to KindNotFound, infrastructure failures
// (connection lost, disk unavailable) map to KindStoreUnavailable so the
// engine can treat them as transient. Every method must complete or fail
// within a bounded time; the engine never tolerates a hang.
type Store interface {
	// LoadAccount returns the account with the given id.
	LoadAccount(ctx context.Context, id string) (Account, error)

	// SaveAccount inserts or replaces an account, including both balances.
	SaveAccount(ctx context.Context, a Account) error

	// ListAccounts returns all accounts ordered by display name.
	ListAccounts(ctx context.Context) ([]Account, error)

	// AppendTransaction adds a transaction to the append-only ledger.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// LoadTransaction returns the transaction with the given id.
	LoadTransaction(ctx context.Context, id string) (Transaction, error)

	// UpdateTransactionStatus records a lifecycle transition. It must
	// reject edges for which CanTransition is false.
	UpdateTransactionStatus(ctx context.Context, id string, status Status) error

	// ListTransactions returns every transaction the account sent or
	// received, newest first (by Seq). A pure read.
	ListTransactions(ctx context.Context, accountID string) ([]Transaction, error)

	// ListTransactionsByStatus returns every transaction in the given
	// status, in FIFO order of submission (ascending Seq). Used at
	// startup to rebuild reconciliation state from the transactions
	// themselves.
	ListTransactionsByStatus(ctx context.Context, status Status) ([]Transaction, error)

	// SaveMerchant inserts or replaces a merchant.
	SaveMerchant(ctx context.Context, m Merchant) error

	// ListMerchants returns merchants ordered by name, optionally
	// restricted to essential services.
	ListMerchants(ctx context.Context, essentialOnly bool) ([]Merchant, error)

	// SavePendingEntry persists a reconciliation-queue entry. Saving an
	// entry that already exists for the same transaction is a no-op.
	SavePendingEntry(ctx context.Context, e PendingEntry) error

	// UpdatePendingEntry records the attempt counters after a failed
	// reconciliation pass.
	UpdatePendingEntry(ctx context.Context, e PendingEntry) error

	// DeletePendingEntry removes a resolved entry. Deleting an absent
	// entry is a no-op.
	DeletePendingEntry(ctx context.Context, transactionID string) error

	// ListPendingEntries returns all unresolved entries in FIFO order of
	// original submission (ascending Seq).
	ListPendingEntries(ctx context.Context) ([]PendingEntry, error)

	// LoadMode returns the persisted connectivity mode, or KindNotFound
	// if none has ever been saved.
	LoadMode(ctx context.Context) (Mode, error)

	// SaveMode persists the connectivity mode and its change time.
	SaveMode(ctx context.Context, m Mode) error

	// MaxSeq returns the highest Seq recorded in the ledger, 0 when the
	// ledger is empty. Used to resume the logical clock after a restart.
	MaxSeq(ctx context.Context) (int64, error)
}
