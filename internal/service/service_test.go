package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisapp/paisa/internal/broadcast"
	"github.com/paisapp/paisa/internal/discovery"
	"github.com/paisapp/paisa/internal/engine"
	"github.com/paisapp/paisa/internal/ledger"
	"github.com/paisapp/paisa/internal/provision"
	"github.com/paisapp/paisa/internal/store"
	"github.com/paisapp/paisa/internal/testutil"
)

// newTestService builds the full stack over an in-memory store with
// deterministic ids and timestamps, seeded with the demo ledger plus a
// second personal account.
func newTestService(t *testing.T, txIDs ...string) *Service {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	seed := provision.DefaultSeed()
	seed.Accounts = append(seed.Accounts, provision.AccountSeed{
		ID: "priya-sharma", Name: "Priya Sharma", Primary: "800.00", Emergency: "200.00",
	})
	_, err = provision.Apply(ctx, s, seed, func() time.Time { return testutil.FixedTime })
	require.NoError(t, err)

	bus := broadcast.New()
	e, err := engine.New(ctx, s, bus,
		engine.WithIDGenerator(engine.NewFixedGenerator(txIDs...)),
		engine.WithNow(testutil.NewTickingClock().Now),
	)
	require.NoError(t, err)

	return New(e, s, bus, discovery.NewSimulated(discovery.DefaultPeers()))
}

func TestPay_Direct(t *testing.T) {
	svc := newTestService(t, "tx-001")
	ctx := context.Background()

	view, err := svc.Pay(ctx, PayRequest{
		SenderID:   "rahul-kumar",
		ReceiverID: "medplus-pharmacy",
		Amount:     "500.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-001", view.ID)
	assert.Equal(t, "completed", view.Status)
	assert.Equal(t, "direct", view.Channel)
	assert.Equal(t, "500.00", view.Amount.String())

	acc, err := svc.Account(ctx, "rahul-kumar")
	require.NoError(t, err)
	assert.Equal(t, "2000.00", acc.Primary.String())
}

func TestPay_NormalizesInput(t *testing.T) {
	svc := newTestService(t, "tx-001")

	// Padded ids and a decomposed accent in the description.
	view, err := svc.Pay(context.Background(), PayRequest{
		SenderID:    "  rahul-kumar  ",
		ReceiverID:  "medplus-pharmacy",
		Amount:      " 10.00 ",
		Description: "crédit",
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", view.Status)
	assert.Equal(t, "crédit", view.Description, "description stored NFC-composed")
}

func TestPay_BadAmount(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, amount := range []string{"", "ten", "1.001", "1,00"} {
		_, err := svc.Pay(ctx, PayRequest{
			SenderID: "rahul-kumar", ReceiverID: "medplus-pharmacy", Amount: amount,
		})
		assert.True(t, ledger.IsInvalidRequest(err), "amount %q: got %v", amount, err)
	}
}

func TestPay_FailedVerdictSurfacesView(t *testing.T) {
	svc := newTestService(t, "tx-001")

	view, err := svc.Pay(context.Background(), PayRequest{
		SenderID:   "priya-sharma",
		ReceiverID: "medplus-pharmacy",
		Amount:     "800.01",
	})
	require.Error(t, err)
	assert.True(t, ledger.IsInsufficientFunds(err), "got %v", err)
	assert.Equal(t, "failed", view.Status, "the failed attempt is still returned for display")
}

func TestPay_ProximityDefers(t *testing.T) {
	svc := newTestService(t, "tx-001")
	ctx := context.Background()

	view, err := svc.Pay(ctx, PayRequest{
		SenderID:   "rahul-kumar",
		ReceiverID: "priya-sharma",
		Amount:     "300.00",
		Proximity:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending_sync", view.Status)
	assert.Equal(t, "proximity", view.Channel)
	assert.Equal(t, 1, svc.Status().Queued)
}

func TestOfflinePaymentSettlesOnReconnect(t *testing.T) {
	svc := newTestService(t, "tx-001")
	ctx := context.Background()

	_, err := svc.SetMode(ctx, "offline")
	require.NoError(t, err)

	view, err := svc.Pay(ctx, PayRequest{
		SenderID:   "rahul-kumar",
		ReceiverID: "medplus-pharmacy",
		Amount:     "300.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending_sync", view.Status)

	status, err := svc.SetMode(ctx, "online")
	require.NoError(t, err)
	assert.Equal(t, "online", status.Mode)
	assert.Equal(t, 0, status.Queued)

	history, err := svc.History(ctx, "rahul-kumar")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "completed", history[0].Status)

	acc, err := svc.Account(ctx, "rahul-kumar")
	require.NoError(t, err)
	assert.Equal(t, "2200.00", acc.Primary.String())
}

func TestSetMode_Invalid(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetMode(context.Background(), "flaky")
	assert.True(t, ledger.IsInvalidRequest(err), "got %v", err)
}

func TestAccountsAndMerchants(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)

	merchants, err := svc.Merchants(ctx, false)
	require.NoError(t, err)
	require.Len(t, merchants, 1)
	assert.Equal(t, "MedPlus Pharmacy", merchants[0].Name)

	essential, err := svc.Merchants(ctx, true)
	require.NoError(t, err)
	assert.Len(t, essential, 1)

	_, err = svc.Account(ctx, "ghost")
	assert.True(t, ledger.IsNotFound(err), "got %v", err)
}

func TestDrawEmergency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	acc, err := svc.DrawEmergency(ctx, "rahul-kumar", "200.00")
	require.NoError(t, err)
	assert.Equal(t, "2700.00", acc.Primary.String())
	assert.Equal(t, "300.00", acc.Emergency.String())

	_, err = svc.DrawEmergency(ctx, "rahul-kumar", "a-lakh")
	assert.True(t, ledger.IsInvalidRequest(err), "got %v", err)
}

func TestScan(t *testing.T) {
	svc := newTestService(t)

	peers, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, peers, 3)
	assert.Equal(t, "Deepak Store", peers[0].Name)
	assert.InDelta(t, 1.8, peers[0].DistanceKm, 0.001)
}

func TestSubscribe_SeesPaymentLifecycle(t *testing.T) {
	svc := newTestService(t, "tx-001")
	ctx := context.Background()

	sub := svc.Subscribe()
	defer sub.Close()

	ev, ok := sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, broadcast.ConnectivityChanged{Mode: ledger.ModeOnline}, ev)

	_, err := svc.Pay(ctx, PayRequest{
		SenderID: "rahul-kumar", ReceiverID: "medplus-pharmacy", Amount: "10.00",
	})
	require.NoError(t, err)

	ev, ok = sub.TryNext()
	require.True(t, ok)
	assert.Equal(t, broadcast.TransactionUpdate{TransactionID: "tx-001", Status: ledger.StatusCompleted}, ev)
}
