package handlers

import (
	"errors"
	"net/http"

	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/dto"
	"github.com/SixTanDev/BTG/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes account information reads.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler returns a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetInfo godoc
// @Summary      Get user info with subscriptions and history
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) GetInfo(c *gin.Context) {
	u, txns, err := h.svc.GetInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, userToResponse(u, txns))
}

func userToResponse(u dom.User, txns []dom.Transaction) dto.UserResponse {
	subs := make([]dto.SubscriptionResponse, len(u.Subscriptions))
	for i, s := range u.Subscriptions {
		subs[i] = dto.SubscriptionResponse{
			ID:           s.ID,
			FundID:       s.FundID,
			Amount:       dto.FormatMinor(s.Amount),
			SubscribedAt: s.SubscribedAt,
		}
	}
	return dto.UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Balance:       dto.FormatMinor(u.Balance),
		Channels:      u.Channels,
		Subscriptions: subs,
		Transactions:  txsToResponses(txns),
	}
}
