package handlers

import (
	"errors"
	"net/http"

	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/dto"
	"github.com/SixTanDev/BTG/internal/service"

	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the ledger operations over HTTP.
type LedgerHandler struct {
	svc *service.LedgerService
}

// NewLedgerHandler returns a new LedgerHandler.
func NewLedgerHandler(svc *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// Subscribe godoc
// @Summary      Subscribe a user to a fund
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SubscribeRequest  true  "Subscription"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /subscriptions [post]
func (h *LedgerHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Subscribe(c.Request.Context(), req.UserID, req.FundID, req.Amount.Minor(), req.IdempotencyKey)
	if err != nil {
		writeLedgerError(c, t, err)
		return
	}
	c.JSON(http.StatusCreated, txToResponse(t))
}

// Cancel godoc
// @Summary      Cancel a fund subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CancelRequest  true  "Cancellation"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /subscriptions/cancel [post]
func (h *LedgerHandler) Cancel(c *gin.Context) {
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Cancel(c.Request.Context(), req.UserID, req.FundID, req.IdempotencyKey)
	if err != nil {
		writeLedgerError(c, t, err)
		return
	}
	c.JSON(http.StatusCreated, txToResponse(t))
}

// Balance godoc
// @Summary      Get a user's balance
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users/{id}/balance [get]
func (h *LedgerHandler) Balance(c *gin.Context) {
	userID := c.Param("id")
	balance, err := h.svc.Balance(c.Request.Context(), userID)
	if err != nil {
		writeLedgerError(c, dom.Transaction{}, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Balance: dto.FormatMinor(balance)})
}

// History godoc
// @Summary      List a user's transaction history
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  dto.ListTransactionsResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users/{id}/transactions [get]
func (h *LedgerHandler) History(c *gin.Context) {
	list, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLedgerError(c, dom.Transaction{}, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Items: txsToResponses(list)})
}

// writeLedgerError maps service errors to HTTP statuses. Rejected
// operations include the audit record id and reason code so the caller
// can find the trail entry.
func writeLedgerError(c *gin.Context, t dom.Transaction, err error) {
	body := gin.H{"error": err.Error()}
	if t.ID != "" {
		body["transaction_id"] = t.ID
		body["reason"] = t.Reason
	}
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrFundNotFound):
		c.JSON(http.StatusNotFound, body)
	case errors.Is(err, service.ErrAlreadySubscribed):
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrBelowMinimum),
		errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrNotSubscribed):
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusServiceUnavailable, body)
	default:
		c.JSON(http.StatusInternalServerError, body)
	}
}

func txToResponse(t dom.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:             t.ID,
		Seq:            t.Seq,
		UserID:         t.UserID,
		FundID:         t.FundID,
		Kind:           t.Kind,
		Amount:         dto.FormatMinor(t.Amount),
		BalanceAfter:   dto.FormatMinor(t.BalanceAfter),
		Status:         t.Status,
		Reason:         t.Reason,
		SubscriptionID: t.SubscriptionID,
		Date:           t.Date,
	}
}

func txsToResponses(list []dom.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, len(list))
	for i := range list {
		out[i] = txToResponse(list[i])
	}
	return out
}
