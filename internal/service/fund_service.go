package service

import (
	"context"
	"errors"

	"github.com/SixTanDev/BTG/internal/cache"
	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/repo"

	"golang.org/x/sync/singleflight"
)

// FundService serves the read-only fund catalog.
type FundService struct {
	funds repo.FundRepo
	cache *cache.LedgerCache
	sf    singleflight.Group
}

// NewFundService creates a FundService. If c is nil, caching is disabled.
func NewFundService(funds repo.FundRepo, c *cache.LedgerCache) *FundService {
	return &FundService{funds: funds, cache: c}
}

// List returns all subscribable funds.
func (s *FundService) List(ctx context.Context) ([]dom.Fund, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("funds", func() (interface{}, error) {
			if list, err := s.cache.GetFunds(ctx); err == nil && list != nil {
				return list, nil
			}
			list, err := s.funds.List(ctx)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetFunds(ctx, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Fund), nil
	}
	return s.funds.List(ctx)
}

// Lookup returns the fund by id.
func (s *FundService) Lookup(ctx context.Context, id string) (dom.Fund, error) {
	f, err := s.funds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Fund{}, ErrFundNotFound
		}
		return dom.Fund{}, err
	}
	return f, nil
}
