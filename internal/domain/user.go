package domain

import "time"

// Notification channels a user may opt into.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// User is the domain entity for a customer account. Balance is held in
// COP minor units (centavos) and is mutated only through the ledger
// service. Version backs optimistic concurrency on writes.
type User struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	Balance  int64
	Version  int64
	Channels []string

	Subscriptions []Subscription

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscribed returns the user's active subscription to the fund, if any.
func (u User) Subscribed(fundID string) (Subscription, bool) {
	for _, s := range u.Subscriptions {
		if s.FundID == fundID {
			return s, true
		}
	}
	return Subscription{}, false
}

// Subscription is an active fund holding. Amount is the value
// originally debited; cancellation refunds exactly this amount.
type Subscription struct {
	ID           string
	FundID       string
	Amount       int64
	SubscribedAt time.Time
}
