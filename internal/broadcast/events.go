package broadcast

import "github.com/paisapp/paisa/internal/ledger"

// Topic identifies an event stream.
type Topic string

const (
	// TopicTransactionUpdate carries transaction lifecycle changes.
	TopicTransactionUpdate Topic = "transaction_update"

	// TopicConnectivityChanged carries connectivity mode changes.
	TopicConnectivityChanged Topic = "connectivity_changed"
)

// Event is a tagged record published on the bus.
type Event interface {
	Topic() Topic
}

// TransactionUpdate announces a transaction status change.
type TransactionUpdate struct {
	TransactionID string        `json:"transaction_id"`
	Status        ledger.Status `json:"status"`
}

// Topic implements Event.
func (TransactionUpdate) Topic() Topic { return TopicTransactionUpdate }

// ConnectivityChanged announces the process-wide connectivity mode.
// It is also the synthetic first event every new subscriber receives.
type ConnectivityChanged struct {
	Mode ledger.Mode `json:"mode"`
}

// Topic implements Event.
func (ConnectivityChanged) Topic() Topic { return TopicConnectivityChanged }
