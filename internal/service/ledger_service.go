package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SixTanDev/BTG/internal/cache"
	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/notify"
	"github.com/SixTanDev/BTG/internal/repo"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrFundNotFound        = errors.New("fund not found")
	ErrBelowMinimum        = errors.New("amount below fund minimum")
	ErrAlreadySubscribed   = errors.New("already subscribed to fund")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotSubscribed       = errors.New("no active subscription to fund")
	// ErrConflict is returned when concurrent writers kept invalidating
	// the version check; the operation was not applied and is safe to
	// retry.
	ErrConflict = errors.New("operation conflicted, retry")
)

const applyAttempts = 3

// LedgerService is the subscription/transaction ledger engine. It
// enforces balance and eligibility invariants, applies each operation
// as one atomic store write, records every attempt in the transaction
// history, and emits a notification event after commit.
type LedgerService struct {
	users repo.UserRepo
	funds repo.FundRepo
	txns  repo.TxRepo
	cache *cache.LedgerCache
	queue notify.Queue
	log   *slog.Logger

	locks keyedMutex
	sf    singleflight.Group
}

// NewLedgerService creates a LedgerService. cache and queue may be nil,
// disabling history caching and notifications respectively.
func NewLedgerService(users repo.UserRepo, funds repo.FundRepo, txns repo.TxRepo,
	c *cache.LedgerCache, queue notify.Queue, log *slog.Logger) *LedgerService {
	return &LedgerService{users: users, funds: funds, txns: txns, cache: c, queue: queue, log: log}
}

// Subscribe debits amount (minor units) from the user's balance and
// opens a subscription to the fund. Validation failures append a
// REJECTED audit record and return a sentinel error without mutating
// balance or subscriptions. idemKey, when non-empty, becomes the
// transaction id; replaying it returns the recorded outcome without
// re-applying.
func (s *LedgerService) Subscribe(ctx context.Context, userID, fundID string, amount int64, idemKey string) (dom.Transaction, error) {
	if prior, ok, err := s.priorOutcome(ctx, idemKey); err != nil {
		return dom.Transaction{}, err
	} else if ok {
		return s.replay(prior)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	txID := idemKey
	if txID == "" {
		txID = uuid.NewString()
	}

	for attempt := 0; attempt < applyAttempts; attempt++ {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return dom.Transaction{}, ErrUserNotFound
			}
			return dom.Transaction{}, fmt.Errorf("load user: %w", err)
		}

		fund, err := s.funds.GetByID(ctx, fundID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return s.reject(ctx, u, txID, fundID, dom.KindSubscribe, amount, dom.ReasonFundNotFound, ErrFundNotFound)
			}
			return dom.Transaction{}, fmt.Errorf("lookup fund: %w", err)
		}
		if _, active := u.Subscribed(fundID); active {
			return s.reject(ctx, u, txID, fundID, dom.KindSubscribe, amount, dom.ReasonAlreadySubscribed, ErrAlreadySubscribed)
		}
		if amount > u.Balance {
			return s.reject(ctx, u, txID, fundID, dom.KindSubscribe, amount, dom.ReasonInsufficientBalance, ErrInsufficientBalance)
		}
		if amount < fund.MinimumAmount {
			return s.reject(ctx, u, txID, fundID, dom.KindSubscribe, amount, dom.ReasonBelowMinimum, ErrBelowMinimum)
		}

		now := time.Now().UTC()
		sub := dom.Subscription{
			ID:           uuid.NewString(),
			FundID:       fundID,
			Amount:       amount,
			SubscribedAt: now,
		}
		change := dom.Change{
			UserID:          userID,
			ExpectedVersion: u.Version,
			NewBalance:      u.Balance - amount,
			AddSubscription: &sub,
			Transaction: dom.Transaction{
				ID:             txID,
				UserID:         userID,
				FundID:         fundID,
				Kind:           dom.KindSubscribe,
				Amount:         amount,
				BalanceAfter:   u.Balance - amount,
				Status:         dom.StatusCommitted,
				SubscriptionID: sub.ID,
				Date:           now,
			},
		}

		committed, err := s.users.Apply(ctx, change)
		if errors.Is(err, repo.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, repo.ErrDuplicateTransaction) {
			return s.replayByID(ctx, txID)
		}
		if err != nil {
			return dom.Transaction{}, fmt.Errorf("apply subscribe: %w", err)
		}

		s.afterCommit(ctx, u, committed, notify.SubscribeMessage(fund.Name, amount))
		return committed, nil
	}
	return dom.Transaction{}, ErrConflict
}

// Cancel closes the user's active subscription to the fund and credits
// back exactly the amount originally debited. A missing subscription
// appends a REJECTED audit record and returns ErrNotSubscribed with no
// state change.
func (s *LedgerService) Cancel(ctx context.Context, userID, fundID string, idemKey string) (dom.Transaction, error) {
	if prior, ok, err := s.priorOutcome(ctx, idemKey); err != nil {
		return dom.Transaction{}, err
	} else if ok {
		return s.replay(prior)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	txID := idemKey
	if txID == "" {
		txID = uuid.NewString()
	}

	for attempt := 0; attempt < applyAttempts; attempt++ {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return dom.Transaction{}, ErrUserNotFound
			}
			return dom.Transaction{}, fmt.Errorf("load user: %w", err)
		}

		fund, err := s.funds.GetByID(ctx, fundID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return s.reject(ctx, u, txID, fundID, dom.KindCancel, 0, dom.ReasonFundNotFound, ErrFundNotFound)
			}
			return dom.Transaction{}, fmt.Errorf("lookup fund: %w", err)
		}
		sub, active := u.Subscribed(fundID)
		if !active {
			return s.reject(ctx, u, txID, fundID, dom.KindCancel, 0, dom.ReasonNotSubscribed, ErrNotSubscribed)
		}

		now := time.Now().UTC()
		change := dom.Change{
			UserID:          userID,
			ExpectedVersion: u.Version,
			NewBalance:      u.Balance + sub.Amount,
			RemoveSubID:     sub.ID,
			Transaction: dom.Transaction{
				ID:             txID,
				UserID:         userID,
				FundID:         fundID,
				Kind:           dom.KindCancel,
				Amount:         sub.Amount,
				BalanceAfter:   u.Balance + sub.Amount,
				Status:         dom.StatusCommitted,
				SubscriptionID: sub.ID,
				Date:           now,
			},
		}

		committed, err := s.users.Apply(ctx, change)
		if errors.Is(err, repo.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, repo.ErrDuplicateTransaction) {
			return s.replayByID(ctx, txID)
		}
		if err != nil {
			return dom.Transaction{}, fmt.Errorf("apply cancel: %w", err)
		}

		s.afterCommit(ctx, u, committed, notify.CancelMessage(fund.Name, sub.Amount))
		return committed, nil
	}
	return dom.Transaction{}, ErrConflict
}

// Balance returns the user's current balance in minor units.
func (s *LedgerService) Balance(ctx context.Context, userID string) (int64, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return u.Balance, nil
}

// History returns the user's transaction records ordered by date
// ascending, cached with write-through invalidation on commit.
func (s *LedgerService) History(ctx context.Context, userID string) ([]dom.Transaction, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if s.cache != nil {
		v, err, _ := s.sf.Do("history:"+userID, func() (interface{}, error) {
			if list, err := s.cache.GetHistory(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.txns.ListByUser(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetHistory(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Transaction), nil
	}
	return s.txns.ListByUser(ctx, userID)
}

// reject appends a REJECTED audit record carrying the reason code and
// the unchanged balance, then returns the matching sentinel error.
func (s *LedgerService) reject(ctx context.Context, u dom.User, txID, fundID, kind string, amount int64, reason string, cause error) (dom.Transaction, error) {
	rec := dom.Transaction{
		ID:           txID,
		UserID:       u.ID,
		FundID:       fundID,
		Kind:         kind,
		Amount:       amount,
		BalanceAfter: u.Balance,
		Status:       dom.StatusRejected,
		Reason:       reason,
		Date:         time.Now().UTC(),
	}
	appended, err := s.txns.Append(ctx, rec)
	if errors.Is(err, repo.ErrDuplicateTransaction) {
		return s.replayByID(ctx, txID)
	}
	if err != nil {
		return dom.Transaction{}, fmt.Errorf("append audit record: %w", err)
	}
	s.invalidateHistory(ctx, u.ID)
	return appended, cause
}

// afterCommit runs the post-commit side effects: cache invalidation and
// the fire-and-forget notification event. Neither can fail the already
// durable mutation.
func (s *LedgerService) afterCommit(ctx context.Context, u dom.User, t dom.Transaction, message string) {
	s.invalidateHistory(ctx, u.ID)
	if s.queue == nil || len(u.Channels) == 0 {
		return
	}
	e := notify.Event{
		TransactionID: t.ID,
		UserID:        u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Channels:      u.Channels,
		Message:       message,
		OccurredAt:    t.Date,
	}
	if err := s.queue.Enqueue(ctx, e); err != nil {
		s.log.ErrorContext(ctx, "enqueue notification", "user_id", u.ID, "transaction_id", t.ID, "error", err)
	}
}

func (s *LedgerService) invalidateHistory(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.InvalidateHistory(ctx, userID)
	}
}

// priorOutcome looks up a previously recorded transaction for the
// idempotency key.
func (s *LedgerService) priorOutcome(ctx context.Context, idemKey string) (dom.Transaction, bool, error) {
	if idemKey == "" {
		return dom.Transaction{}, false, nil
	}
	t, err := s.txns.GetByID(ctx, idemKey)
	if errors.Is(err, repo.ErrNotFound) {
		return dom.Transaction{}, false, nil
	}
	if err != nil {
		return dom.Transaction{}, false, err
	}
	return t, true, nil
}

func (s *LedgerService) replayByID(ctx context.Context, txID string) (dom.Transaction, error) {
	t, err := s.txns.GetByID(ctx, txID)
	if err != nil {
		return dom.Transaction{}, fmt.Errorf("load recorded transaction: %w", err)
	}
	return s.replay(t)
}

// replay maps a recorded transaction back to the result the original
// call produced, so idempotent retries observe the same outcome.
func (s *LedgerService) replay(t dom.Transaction) (dom.Transaction, error) {
	if t.Status == dom.StatusCommitted {
		return t, nil
	}
	switch t.Reason {
	case dom.ReasonFundNotFound:
		return t, ErrFundNotFound
	case dom.ReasonBelowMinimum:
		return t, ErrBelowMinimum
	case dom.ReasonAlreadySubscribed:
		return t, ErrAlreadySubscribed
	case dom.ReasonInsufficientBalance:
		return t, ErrInsufficientBalance
	case dom.ReasonNotSubscribed:
		return t, ErrNotSubscribed
	default:
		return t, fmt.Errorf("rejected: %s", t.Reason)
	}
}
