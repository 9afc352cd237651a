package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/paisapp/paisa/internal/broadcast"
	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
)

// DefaultMaxAttempts is the reconciliation attempt budget per entry.
// After this many transient failures an entry is terminally failed.
const DefaultMaxAttempts = 5

// Engine owns the ledger core: balances, transaction lifecycle, the
// reconciliation queue, and the connectivity mode.
//
// Thread-safety model:
//   - Submit, GetHistory, DrawEmergency: safe from any goroutine
//   - Mode / SetMode: safe from any goroutine; transitions are serialized
//   - Drain: safe from any goroutine; drains never overlap
type Engine struct {
	store    ledger.Store
	bus      *broadcast.Bus
	accounts *Accounts
	queue    *syncQueue
	clock    *Clock
	ids      IDGenerator
	now      func() time.Time

	maxAttempts int

	// modeMu serializes mode transitions and the drain each offline ->
	// online transition triggers.
	modeMu    sync.Mutex
	mode      ledger.Mode
	changedAt time.Time

	// drainMu prevents overlapping drains without blocking account
	// operations.
	drainMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDGenerator sets the transaction id generator.
// Tests use NewFixedGenerator for deterministic ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithNow sets the wall-clock source. Timestamps are informational only
// (ordering uses the logical clock); tests pin this for golden output.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaxAttempts sets the reconciliation attempt budget per entry.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// New builds an Engine over the given store and bus and restores state:
// the logical clock resumes from the highest recorded seq, the
// reconciliation queue is rebuilt from the durable pending_sync entries,
// and the connectivity mode is loaded (defaulting to online on a fresh
// ledger). The restored mode is published as the bus's retained
// connectivity event.
func New(ctx context.Context, store ledger.Store, bus *broadcast.Bus, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:       store,
		bus:         bus,
		accounts:    NewAccounts(store),
		queue:       newSyncQueue(),
		ids:         UUIDv7Generator{},
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}

	maxSeq, err := store.MaxSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore clock: %w", err)
	}
	e.clock = NewClockAt(maxSeq)

	entries, err := store.ListPendingEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore reconciliation queue: %w", err)
	}

	// The transactions are the source of truth: a pending_sync transaction
	// whose durable entry was lost to a transient write failure gets its
	// entry rebuilt here, so it can never be stranded across restarts.
	stuck, err := store.ListTransactionsByStatus(ctx, ledger.StatusPendingSync)
	if err != nil {
		return nil, fmt.Errorf("restore reconciliation queue: %w", err)
	}
	entries = repairPendingEntries(ctx, store, entries, stuck)
	e.queue.Restore(entries)

	mode, err := store.LoadMode(ctx)
	switch {
	case ledger.IsNotFound(err):
		mode = ledger.ModeOnline
	case err != nil:
		return nil, fmt.Errorf("restore connectivity mode: %w", err)
	}
	e.mode = mode
	e.changedAt = e.now()

	// Seed the retained connectivity event so the first subscriber sees
	// the current mode immediately.
	bus.Publish(broadcast.ConnectivityChanged{Mode: mode})

	slog.Info("engine started",
		"mode", string(mode),
		"queued", e.queue.Len(),
		"seq", maxSeq,
	)
	return e, nil
}

// repairPendingEntries merges entries with one per pending_sync
// transaction missing its durable row, restoring FIFO (ascending seq)
// order. Rebuilt rows are re-persisted; a failure there is logged, the
// in-memory entry carries the transaction either way.
func repairPendingEntries(ctx context.Context, store ledger.Store, entries []ledger.PendingEntry, stuck []ledger.Transaction) []ledger.PendingEntry {
	known := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		known[e.TransactionID] = struct{}{}
	}

	for _, tx := range stuck {
		if _, ok := known[tx.ID]; ok {
			continue
		}
		entry := ledger.PendingEntry{TransactionID: tx.ID, Seq: tx.Seq}
		entries = append(entries, entry)
		slog.Warn("rebuilt missing reconciliation entry", "transaction", tx.ID)
		if err := store.SavePendingEntry(ctx, entry); err != nil {
			slog.Warn("failed to persist rebuilt reconciliation entry",
				"transaction", tx.ID,
				"error", err,
			)
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries
}

// Accounts exposes the account store (balance reads, emergency draws).
func (e *Engine) Accounts() *Accounts {
	return e.accounts
}

// QueueDepth returns the number of transactions awaiting reconciliation.
func (e *Engine) QueueDepth() int {
	return e.queue.Len()
}

// SubmitParams is the validated input of a transaction submission.
type SubmitParams struct {
	SenderID    string
	ReceiverID  string
	Amount      money.Amount
	Channel     ledger.Channel
	Description string
}

// Submit records a transfer and routes it to its settlement path.
//
// Direct channel while online settles immediately: the returned
// transaction is completed, or failed together with the verdict error
// (InsufficientFunds, StoreUnavailable, Consistency). The proximity
// channel, or any submission while offline, defers the transaction into
// the reconciliation queue as pending_sync without touching balances.
//
// Whatever the outcome, the transaction is never left in an ambiguous
// state: by the time Submit returns it is completed, failed, or queued
// as pending_sync.
func (e *Engine) Submit(ctx context.Context, p SubmitParams) (ledger.Transaction, error) {
	if err := validateSubmit(p); err != nil {
		return ledger.Transaction{}, err
	}

	// Both parties must exist before anything is recorded.
	if _, err := e.store.LoadAccount(ctx, p.SenderID); err != nil {
		return ledger.Transaction{}, err
	}
	if _, err := e.store.LoadAccount(ctx, p.ReceiverID); err != nil {
		return ledger.Transaction{}, err
	}

	tx := ledger.Transaction{
		ID:          e.ids.Generate(),
		SenderID:    p.SenderID,
		ReceiverID:  p.ReceiverID,
		Amount:      p.Amount,
		Status:      ledger.StatusPending,
		Channel:     p.Channel,
		Description: p.Description,
		Seq:         e.clock.Next(),
		CreatedAt:   e.now(),
	}
	if err := e.store.AppendTransaction(ctx, tx); err != nil {
		return ledger.Transaction{}, err
	}

	if p.Channel == ledger.ChannelDirect && e.Mode() == ledger.ModeOnline {
		return e.settleDirect(ctx, tx)
	}
	return e.deferForSync(ctx, tx)
}

// settleDirect applies the immediate settlement path.
func (e *Engine) settleDirect(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	err := e.accounts.Settle(ctx, tx.SenderID, tx.ReceiverID, tx.Amount)
	if err == nil {
		if terr := e.transition(ctx, &tx, ledger.StatusCompleted); terr != nil {
			// Balances moved but the ledger still records the transaction
			// as unsettled. Escalated for manual audit like a failed
			// compensation.
			return tx, ledger.Consistencyf(terr,
				"transaction %s settled but its completion could not be recorded", tx.ID)
		}
		return tx, nil
	}

	// Any settlement verdict other than success is terminal for this
	// transaction; a transient store failure is surfaced as retryable,
	// and the caller resubmits a fresh transaction.
	e.transition(ctx, &tx, ledger.StatusFailed)
	return tx, err
}

// deferForSync parks the transaction in the reconciliation queue.
//
/// The in-memory enqueue is unconditional: once a transaction is accepted
// for deferral it must carry a reconciliation entry until resolution.
// The durable row and the status write are bookkeeping rebuilt at
// startup from the transactions themselves, so their failures are
// logged, not fatal.
func (e *Engine) deferForSync(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	e.transition(ctx, &tx, ledger.StatusPendingSync)

	entry := ledger.PendingEntry{TransactionID: tx.ID, Seq: tx.Seq}
	e.queue.Enqueue(entry)
	if err := e.store.SavePendingEntry(ctx, entry); err != nil {
		slog.Warn("failed to persist reconciliation entry",
			"transaction", tx.ID,
			"error", err,
		)
	}

	slog.Info("transaction deferred for reconciliation",
		"transaction", tx.ID,
		"channel", string(tx.Channel),
		"amount", tx.Amount.String(),
	)
	return tx, nil
}

// statusWriteAttempts bounds the retries of a status transition write
// before the divergence is escalated.
const statusWriteAttempts = 3

// transition records a status change and publishes it. Transient write
// failures are retried; if the write still cannot land, the durable
// ledger diverges from the settled state, which is logged as an audit
// record and returned for the caller to escalate. The in-memory
// transaction carries the authoritative verdict either way.
func (e *Engine) transition(ctx context.Context, tx *ledger.Transaction, to ledger.Status) error {
	var err error
	for attempt := 1; attempt <= statusWriteAttempts; attempt++ {
		err = e.store.UpdateTransactionStatus(ctx, tx.ID, to)
		if err == nil || !ledger.IsStoreUnavailable(err) {
			break
		}
	}
	if err != nil {
		slog.Error("failed to record status transition",
			"transaction", tx.ID,
			"from", string(tx.Status),
			"to", string(to),
			"error", err,
		)
	}
	tx.Status = to
	e.bus.Publish(broadcast.TransactionUpdate{TransactionID: tx.ID, Status: to})
	return err
}

// GetHistory returns the account's transactions, sent and received,
// newest first. A pure read.
func (e *Engine) GetHistory(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	if _, err := e.store.LoadAccount(ctx, accountID); err != nil {
		return nil, err
	}
	return e.store.ListTransactions(ctx, accountID)
}

// Mode returns the current connectivity mode.
func (e *Engine) Mode() ledger.Mode {
	e.modeMu.Lock()
	defer e.modeMu.Unlock()
	return e.mode
}

// ModeChangedAt returns when the mode last changed.
func (e *Engine) ModeChangedAt() time.Time {
	e.modeMu.Lock()
	defer e.modeMu.Unlock()
	return e.changedAt
}

// SetMode transitions the connectivity mode.
//
// Transitions are serialized; setting the current mode again is a no-op.
// The mode is persisted before the transition takes effect - a store
// failure leaves the mode unchanged. An offline -> online transition
// drains the reconciliation queue exactly once, then the change event is
// published. Drain verdicts are per-transaction outcomes, not SetMode
// failures; consistency escalations are logged inside the drain.
func (e *Engine) SetMode(ctx context.Context, m ledger.Mode) error {
	if !ledger.ValidMode(m) {
		return ledger.InvalidRequestf("unknown connectivity mode %q", m)
	}

	e.modeMu.Lock()
	defer e.modeMu.Unlock()

	if m == e.mode {
		return nil
	}

	if err := e.store.SaveMode(ctx, m); err != nil {
		return err
	}

	prev := e.mode
	e.mode = m
	e.changedAt = e.now()

	slog.Info("connectivity mode changed", "from", string(prev), "to", string(m))

	if prev == ledger.ModeOffline && m == ledger.ModeOnline {
		e.Drain(ctx)
	}

	e.bus.Publish(broadcast.ConnectivityChanged{Mode: m})
	return nil
}
