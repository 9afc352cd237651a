package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// ledgerSnapshot is the canonical JSON shape compared against golden
// files: connectivity status, every account, and one account's history.
type ledgerSnapshot struct {
	Status   StatusView        `json:"status"`
	Accounts []AccountView     `json:"accounts"`
	History  []TransactionView `json:"history"`
}

// TestOfflineFlow_Golden exercises the demo flow end to end and pins its
// externally visible state: a direct payment, an offline proximity
// payment, and the reconciliation on reconnect.
func TestOfflineFlow_Golden(t *testing.T) {
	svc := newTestService(t, "tx-001", "tx-002")
	ctx := context.Background()

	_, err := svc.Pay(ctx, PayRequest{
		SenderID:    "rahul-kumar",
		ReceiverID:  "medplus-pharmacy",
		Amount:      "500.00",
		Description: "monthly medicines",
	})
	require.NoError(t, err)

	_, err = svc.SetMode(ctx, "offline")
	require.NoError(t, err)

	_, err = svc.Pay(ctx, PayRequest{
		SenderID:    "rahul-kumar",
		ReceiverID:  "priya-sharma",
		Amount:      "300.00",
		Description: "shared auto fare",
		Proximity:   true,
	})
	require.NoError(t, err)

	status, err := svc.SetMode(ctx, "online")
	require.NoError(t, err)
	require.Equal(t, 0, status.Queued)

	accounts, err := svc.Accounts(ctx)
	require.NoError(t, err)
	history, err := svc.History(ctx, "rahul-kumar")
	require.NoError(t, err)

	snapshot := ledgerSnapshot{
		Status:   status,
		Accounts: accounts,
		History:  history,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "offline_flow", data)
}
