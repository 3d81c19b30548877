package dto

import "time"

type SubscribeRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	FundID         string `json:"fund_id" binding:"required"`
	Amount         Amount `json:"amount" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,uuid"`
}

type CancelRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	FundID         string `json:"fund_id" binding:"required"`
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,uuid"`
}

type TransactionResponse struct {
	ID             string    `json:"id"`
	Seq            int64     `json:"seq"`
	UserID         string    `json:"user_id"`
	FundID         string    `json:"fund_id"`
	Kind           string    `json:"kind"`
	Amount         string    `json:"amount"`
	BalanceAfter   string    `json:"balance_after"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	Date           time.Time `json:"date"`
}

type ListTransactionsResponse struct {
	Items []TransactionResponse `json:"items"`
}

type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
}

type FundResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	MinimumAmount string `json:"minimum_amount"`
}

type ListFundsResponse struct {
	Items []FundResponse `json:"items"`
}

type SubscriptionResponse struct {
	ID           string    `json:"id"`
	FundID       string    `json:"fund_id"`
	Amount       string    `json:"amount"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type UserResponse struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Email         string                 `json:"email"`
	Phone         string                 `json:"phone"`
	Balance       string                 `json:"balance"`
	Channels      []string               `json:"notification_preference"`
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Transactions  []TransactionResponse  `json:"transactions"`
}
