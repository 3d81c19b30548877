package domain

import "time"

// Transaction kinds.
const (
	KindSubscribe = "SUBSCRIBE"
	KindCancel    = "CANCEL"
)

// Transaction statuses. Rejected operations are still recorded so the
// audit trail covers every attempt.
const (
	StatusCommitted = "COMMITTED"
	StatusRejected  = "REJECTED"
)

// Machine-readable reason codes carried by rejected transactions.
const (
	ReasonFundNotFound        = "FUND_NOT_FOUND"
	ReasonBelowMinimum        = "BELOW_MINIMUM"
	ReasonAlreadySubscribed   = "ALREADY_SUBSCRIBED"
	ReasonInsufficientBalance = "INSUFFICIENT_BALANCE"
	ReasonNotSubscribed       = "NOT_SUBSCRIBED"
)

// Transaction is an immutable audit record of an attempted or committed
// balance-affecting operation. Seq is assigned by the store and is
// monotonically increasing within a user's history. Replaying the
// COMMITTED records from the initial balance reconstructs the current
// balance exactly.
type Transaction struct {
	ID             string
	Seq            int64
	UserID         string
	FundID         string
	Kind           string
	Amount         int64
	BalanceAfter   int64
	Status         string
	Reason         string
	SubscriptionID string
	Date           time.Time
}

// Change is the atomic unit a committed ledger operation applies to a
// user record: new balance, a subscription added or removed, and the
// transaction record, all in one store write guarded by the expected
// version.
type Change struct {
	UserID          string
	ExpectedVersion int64
	NewBalance      int64
	AddSubscription *Subscription
	RemoveSubID     string
	Transaction     Transaction
}
