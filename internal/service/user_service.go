package service

import (
	"context"
	"errors"

	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/repo"
)

// UserService serves account information reads.
type UserService struct {
	users repo.UserRepo
	txns  repo.TxRepo
}

// NewUserService returns a new UserService.
func NewUserService(users repo.UserRepo, txns repo.TxRepo) *UserService {
	return &UserService{users: users, txns: txns}
}

// GetInfo returns the user with their active subscriptions plus full
// transaction history.
func (s *UserService) GetInfo(ctx context.Context, userID string) (dom.User, []dom.Transaction, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, nil, ErrUserNotFound
		}
		return dom.User{}, nil, err
	}
	txns, err := s.txns.ListByUser(ctx, userID)
	if err != nil {
		return dom.User{}, nil, err
	}
	return u, txns, nil
}
