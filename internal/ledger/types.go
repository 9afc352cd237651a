package ledger

import (
	"time"

	"github.com/paisapp/paisa/internal/money"
)

// Account holds an identity, a primary spendable balance, and a reserved
// emergency balance. The emergency reserve is never touched by ordinary
// transfers; only an explicit emergency draw moves it.
type Account struct {
	ID          string
	DisplayName string
	Phone       string
	Primary     money.Amount
	Emergency   money.Amount
	CreatedAt   time.Time
}

// Merchant is an account that accepts payments, with a category used to
// flag essential services (pharmacies, fuel, groceries) that stay
// reachable through the proximity channel.
type Merchant struct {
	ID        string
	AccountID string
	Name      string
	Category  string
	Essential bool
}

// Channel identifies the delivery path a transaction was submitted on.
type Channel string

const (
	// ChannelDirect is a transaction submitted with confirmed connectivity
	// to the settlement path.
	ChannelDirect Channel = "direct"

	// ChannelProximity is a transaction submitted over a local,
	// connectivity-independent path. Always deferred for reconciliation.
	ChannelProximity Channel = "proximity"
)

// ValidChannel reports whether c is a known channel.
func ValidChannel(c Channel) bool {
	return c == ChannelDirect || c == ChannelProximity
}

// Mode is the process-wide connectivity mode.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// ValidMode reports whether m is a known mode.
func ValidMode(m Mode) bool {
	return m == ModeOnline || m == ModeOffline
}

// Transaction is one entry in the append-only ledger.
//
// Amount, sender, receiver and channel are immutable after creation.
// Status changes only along the edges documented in the package comment.
type Transaction struct {
	ID          string
	SenderID    string
	ReceiverID  string
	Amount      money.Amount
	Status      Status
	Channel     Channel
	Description string

	// Seq is the logical clock value assigned at submission. All ordering
	// (history, reconciliation fairness) uses Seq, not CreatedAt.
	Seq       int64
	CreatedAt time.Time
}

// PendingEntry is a reconciliation-queue record wrapping a pending_sync
// transaction. It exists from the moment an offline transaction is
// accepted until reconciliation resolves it either way.
type PendingEntry struct {
	TransactionID string
	Seq           int64
	Attempts      int
	LastAttemptAt time.Time
}
