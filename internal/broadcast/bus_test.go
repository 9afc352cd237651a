package broadcast

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisapp/paisa/internal/ledger"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	bus.Publish(TransactionUpdate{TransactionID: "tx-1", Status: ledger.StatusPending})
	bus.Publish(TransactionUpdate{TransactionID: "tx-1", Status: ledger.StatusCompleted})
	bus.Publish(ConnectivityChanged{Mode: ledger.ModeOffline})

	ev, ok := sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, TransactionUpdate{TransactionID: "tx-1", Status: ledger.StatusPending}, ev)

	ev, ok = sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, TransactionUpdate{TransactionID: "tx-1", Status: ledger.StatusCompleted}, ev)

	ev, ok = sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, TopicConnectivityChanged, ev.Topic())

	_, ok = sub.TryNext()
	assert.False(t, ok, "buffer drained")
}

func TestLateSubscriberSeesCurrentModeFirst(t *testing.T) {
	bus := New()

	// Three mode changes before anyone subscribes.
	bus.Publish(ConnectivityChanged{Mode: ledger.ModeOffline})
	bus.Publish(ConnectivityChanged{Mode: ledger.ModeOnline})
	bus.Publish(ConnectivityChanged{Mode: ledger.ModeOffline})

	sub := bus.Subscribe()
	defer sub.Close()

	ev, ok := sub.TryNext()
	require.True(t, ok, "subscriber must be seeded with the current mode")
	assert.Equal(t, ConnectivityChanged{Mode: ledger.ModeOffline}, ev, "current mode, not the historical sequence")

	_, ok = sub.TryNext()
	assert.False(t, ok, "only the synthetic event, no history replay")
}

func TestSubscriberBeforeAnyPublish(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	_, ok := sub.TryNext()
	assert.False(t, ok, "nothing retained yet")
}

func TestDropOldestKeepsOrder(t *testing.T) {
	bus := NewWithBuffer(3)
	sub := bus.Subscribe()
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		bus.Publish(TransactionUpdate{TransactionID: fmt.Sprintf("tx-%d", i), Status: ledger.StatusCompleted})
	}

	// Oldest two dropped; the survivors arrive in publish order.
	var got []string
	for {
		ev, ok := sub.TryNext()
		if !ok {
			break
		}
		got = append(got, ev.(TransactionUpdate).TransactionID)
	}
	assert.Equal(t, []string{"tx-3", "tx-4", "tx-5"}, got)
	assert.Equal(t, 2, sub.Dropped())
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	bus := NewWithBuffer(1)
	slow := bus.Subscribe()
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		// A subscriber that never reads must not stall this loop.
		for i := 0; i < 10_000; i++ {
			bus.Publish(TransactionUpdate{TransactionID: "tx", Status: ledger.StatusCompleted})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher blocked by a slow subscriber")
	}
}

func TestNextBlocksUntilPublish(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	got := make(chan Event, 1)
	go func() {
		ev, ok := sub.Next(context.Background())
		if ok {
			got <- ev
		}
	}()

	time.Sleep(10 * time.Millisecond)
	bus.Publish(ConnectivityChanged{Mode: ledger.ModeOnline})

	select {
	case ev := <-got:
		assert.Equal(t, ConnectivityChanged{Mode: ledger.ModeOnline}, ev)
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock on publish")
	}
}

func TestNextUnblocksOnClose(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()

	done := make(chan bool, 1)
	go func() {
		_, ok := sub.Next(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	sub.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock on close")
	}
}

func TestNextHonorsContextCancellation(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := sub.Next(ctx)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Next did not honor context cancellation")
	}
}

func TestConcurrentSubscribersEachSeeOrderedStream(t *testing.T) {
	bus := New()

	const subscribers = 8
	const events = 40

	var wg sync.WaitGroup
	results := make([][]string, subscribers)

	subs := make([]*Subscriber, subscribers)
	for i := range subs {
		subs[i] = bus.Subscribe()
	}

	for i := 0; i < subscribers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for len(results[i]) < events {
				ev, ok := subs[i].Next(ctx)
				if !ok {
					return
				}
				results[i] = append(results[i], ev.(TransactionUpdate).TransactionID)
			}
		}(i)
	}

	want := make([]string, events)
	for i := 0; i < events; i++ {
		id := fmt.Sprintf("tx-%02d", i)
		want[i] = id
		bus.Publish(TransactionUpdate{TransactionID: id, Status: ledger.StatusCompleted})
	}

	wg.Wait()
	for i := 0; i < subscribers; i++ {
		assert.Equal(t, want, results[i], "subscriber %d must see the full ordered stream", i)
		subs[i].Close()
	}
}
