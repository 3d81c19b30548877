package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/Rhymond/go-money"
)

// Event is a committed-transaction notification to be delivered on
// each of the user's enabled channels. Delivery is best-effort and
// fully decoupled from ledger durability.
type Event struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Channels      []string  `json:"channels"`
	Message       string    `json:"message"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Queue transports events from the ledger to the dispatch worker.
type Queue interface {
	Enqueue(ctx context.Context, e Event) error
	// Dequeue blocks until an event is available or ctx is done.
	Dequeue(ctx context.Context) (Event, error)
}

// SubscribeMessage renders the notification text for a committed
// subscription, amount in COP minor units.
func SubscribeMessage(fundName string, amount int64) string {
	return fmt.Sprintf("You have subscribed to fund %s for %s.",
		fundName, money.New(amount, money.COP).Display())
}

// CancelMessage renders the notification text for a committed
// cancellation and refund.
func CancelMessage(fundName string, amount int64) string {
	return fmt.Sprintf("You have cancelled your subscription to fund %s and have been refunded %s.",
		fundName, money.New(amount, money.COP).Display())
}
