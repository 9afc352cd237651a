package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/money"
	"github.com/paisapp/paisa/internal/testutil"
)

// queueOffline seeds a deferred transfer and returns it with the engine
// left in offline mode.
func queueOffline(t *testing.T, e *Engine, sender, receiver, amount string) ledger.Transaction {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.SetMode(ctx, ledger.ModeOffline))
	return submit(t, e, sender, receiver, amount, ledger.ChannelProximity)
}

func TestDrain_SettlesFIFO(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "250.00", "0.00")
	seedAccount(t, s, "medplus", "0.00", "0.00")
	e := newTestEngine(t, s)
	ctx := context.Background()

	require.NoError(t, e.SetMode(ctx, ledger.ModeOffline))
	// Only the earlier transfer fits the balance; FIFO means it wins.
	first := submit(t, e, "rahul", "medplus", "200.00", ledger.ChannelProximity)
	second := submit(t, e, "rahul", "medplus", "100.00", ledger.ChannelProximity)

	e.Drain(ctx)

	storedFirst, err := s.LoadTransaction(ctx, first.ID)
	require.NoError(t, err)
	storedSecond, err := s.LoadTransaction(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, storedFirst.Status)
	assert.Equal(t, ledger.StatusFailed, storedSecond.Status)

	senderPrimary, _ := balance(t, s, "rahul")
	assert.True(t, senderPrimary.Equal(money.MustParse("50.00")))
	assert.Equal(t, 0, e.QueueDepth())
}

func TestDrain_SecondDrainIsNoOp(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")
	e := newTestEngine(t, s)
	ctx := context.Background()

	queueOffline(t, e, "rahul", "medplus", "300.00")

	e.Drain(ctx)
	e.Drain(ctx)

	// The transfer settled exactly once.
	senderPrimary, _ := balance(t, s, "rahul")
	receiverPrimary, _ := balance(t, s, "medplus")
	assert.True(t, senderPrimary.Equal(money.MustParse("2200.00")))
	assert.True(t, receiverPrimary.Equal(money.MustParse("5300.00")))
}

func TestDrain_EmptyQueueIsNoOp(t *testing.T) {
	s := openTestStore(t)
	e := newTestEngine(t, s)

	e.Drain(context.Background())
	assert.Equal(t, 0, e.QueueDepth())
}

func TestDrain_InsufficientFundsFailsAndRemoves(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "100.00", "500.00")
	seedAccount(t, s, "medplus", "0.00", "0.00")
	e := newTestEngine(t, s)
	ctx := context.Background()

	tx := queueOffline(t, e, "rahul", "medplus", "150.00")

	e.Drain(ctx)

	// Waiting would not make funds appear: failed terminally, not retried.
	assert.Equal(t, 0, e.QueueDepth())
	stored, err := s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, stored.Status)

	entries, err := s.ListPendingEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "durable entry removed with the in-memory one")
}

func TestDrain_TransientFailureRetriesNextCycle(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")

	faulty := testutil.NewFaultStore(s)
	e := newTestEngine(t, faulty)
	ctx := context.Background()

	tx := queueOffline(t, e, "rahul", "medplus", "300.00")

	// First cycle: the settlement read fails transiently.
	faulty.FailNextMatching(testutil.OpLoadAccount, "rahul", 1)
	e.Drain(ctx)

	require.Equal(t, 1, e.QueueDepth(), "transiently failed entry stays queued")
	stored, err := s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPendingSync, stored.Status)

	// Second cycle: the store recovered.
	e.Drain(ctx)
	assert.Equal(t, 0, e.QueueDepth())
	stored, err = s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, stored.Status)
}

func TestDrain_AttemptBudgetExhaustedFailsTerminally(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")

	faulty := testutil.NewFaultStore(s)
	e := newTestEngine(t, faulty, WithMaxAttempts(3))
	ctx := context.Background()

	tx := queueOffline(t, e, "rahul", "medplus", "300.00")

	faulty.FailNextMatching(testutil.OpLoadAccount, "rahul", 100)
	for i := 0; i < 3; i++ {
		e.Drain(ctx)
	}

	assert.Equal(t, 0, e.QueueDepth(), "budget spent, entry removed")
	stored, err := s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, stored.Status)

	// No balance moved across any of the attempts.
	senderPrimary, _ := balance(t, s, "rahul")
	assert.True(t, senderPrimary.Equal(money.MustParse("2500.00")))
}

func TestDrain_PersistsAttemptCountsAcrossRestart(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")

	faulty := testutil.NewFaultStore(s)
	e := newTestEngine(t, faulty, WithMaxAttempts(3))
	ctx := context.Background()

	tx := queueOffline(t, e, "rahul", "medplus", "300.00")

	faulty.FailNextMatching(testutil.OpLoadAccount, "rahul", 100)
	e.Drain(ctx)
	e.Drain(ctx)

	entries, err := s.ListPendingEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Attempts)

	// A restarted engine inherits the spent attempts: one more failure
	// exhausts the budget.
	restartedFaulty := testutil.NewFaultStore(s)
	restarted := newTestEngine(t, restartedFaulty, WithMaxAttempts(3))
	restartedFaulty.FailNextMatching(testutil.OpLoadAccount, "rahul", 100)
	restarted.Drain(ctx)

	assert.Equal(t, 0, restarted.QueueDepth())
	stored, err := s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, stored.Status)
}

func TestDrain_ConsistencyEscalationFailsTransaction(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")

	faulty := testutil.NewFaultStore(s)
	e := newTestEngine(t, faulty)
	ctx := context.Background()

	tx := queueOffline(t, e, "rahul", "medplus", "300.00")

	// Debit lands, credit and reversal both fail.
	faulty.FailAfter(testutil.OpSaveAccount, 1, 2)
	e.Drain(ctx)

	assert.Equal(t, 0, e.QueueDepth(), "escalated entry is not retried against damaged state")
	stored, err := s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, stored.Status)
}

func TestDrain_SettlesEntryStuckPending(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")

	faulty := testutil.NewFaultStore(s)
	e := newTestEngine(t, faulty)
	ctx := context.Background()

	require.NoError(t, e.SetMode(ctx, ledger.ModeOffline))

	// Every retry of the pending -> pending_sync write fails, so the
	// transaction stays durably pending while its entry is queued.
	faulty.FailNext(testutil.OpUpdateStatus, 3)
	tx := submit(t, e, "rahul", "medplus", "300.00", ledger.ChannelProximity)

	stored, err := s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, ledger.StatusPending, stored.Status)
	require.Equal(t, 1, e.QueueDepth())

	// The drain settles it anyway: only terminal statuses are dropped.
	require.NoError(t, e.SetMode(ctx, ledger.ModeOnline))

	stored, err = s.LoadTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, stored.Status)

	senderPrimary, _ := balance(t, s, "rahul")
	assert.True(t, senderPrimary.Equal(money.MustParse("2200.00")))
}

func TestDrain_AlreadyResolvedEntryDropped(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")
	e := newTestEngine(t, s)
	ctx := context.Background()

	tx := queueOffline(t, e, "rahul", "medplus", "300.00")

	// Resolve the transaction out of band; the queue entry is now stale.
	require.NoError(t, s.UpdateTransactionStatus(ctx, tx.ID, ledger.StatusFailed))

	e.Drain(ctx)

	assert.Equal(t, 0, e.QueueDepth())
	senderPrimary, _ := balance(t, s, "rahul")
	assert.True(t, senderPrimary.Equal(money.MustParse("2500.00")), "stale entry must not settle")
}

func TestDrain_EntryWithoutTransactionDropped(t *testing.T) {
	s := openTestStore(t)
	e := newTestEngine(t, s)
	ctx := context.Background()

	// An entry whose transaction never made it to the ledger.
	e.queue.Enqueue(ledger.PendingEntry{TransactionID: "orphan", Seq: 1})

	e.Drain(ctx)
	assert.Equal(t, 0, e.QueueDepth(), "anomalous entry dropped, not retried")
}

func TestDrain_MidDrainEnqueueWaitsForNextCycle(t *testing.T) {
	s := openTestStore(t)
	seedAccount(t, s, "rahul", "2500.00", "500.00")
	seedAccount(t, s, "medplus", "5000.00", "1000.00")
	e := newTestEngine(t, s)
	ctx := context.Background()

	queueOffline(t, e, "rahul", "medplus", "100.00")

	snapshot := e.queue.Snapshot()
	// Simulates a proximity submission racing the drain: enqueued after
	// the snapshot, so this cycle must not touch it.
	late := submit(t, e, "rahul", "medplus", "200.00", ledger.ChannelProximity)

	e.drainMu.Lock()
	for _, entry := range snapshot {
		e.reconcile(ctx, entry)
	}
	e.drainMu.Unlock()

	stored, err := s.LoadTransaction(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPendingSync, stored.Status)
	assert.Equal(t, 1, e.QueueDepth())
}
