package repo

import (
	"context"
	"sort"
	"sync"

	dom "github.com/SixTanDev/BTG/internal/domain"
)

// MemoryStore is an in-memory store with the same atomicity and
// versioning semantics as the Postgres repos. Its Users, Funds and
// Transactions views satisfy UserRepo, FundRepo and TxRepo. Used by
// tests and local development without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]dom.User
	funds map[string]dom.Fund
	txns  []dom.Transaction
	byID  map[string]int
	seq   int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]dom.User),
		funds: make(map[string]dom.Fund),
		byID:  make(map[string]int),
	}
}

// PutUser inserts or replaces a user record.
func (m *MemoryStore) PutUser(u dom.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = cloneUser(u)
}

// PutFund inserts or replaces a fund record.
func (m *MemoryStore) PutFund(f dom.Fund) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funds[f.ID] = f
}

// Users returns the store as a UserRepo.
func (m *MemoryStore) Users() UserRepo { return memoryUsers{m} }

// Funds returns the store as a FundRepo.
func (m *MemoryStore) Funds() FundRepo { return memoryFunds{m} }

// Transactions returns the store as a TxRepo.
func (m *MemoryStore) Transactions() TxRepo { return memoryTxns{m} }

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) GetByID(ctx context.Context, id string) (dom.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

// Apply commits the change under one lock, mirroring the single
// database transaction of the Postgres repo.
func (r memoryUsers) Apply(ctx context.Context, change dom.Change) (dom.Transaction, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[change.UserID]
	if !ok {
		return dom.Transaction{}, ErrNotFound
	}
	if u.Version != change.ExpectedVersion {
		return dom.Transaction{}, ErrVersionConflict
	}
	if _, dup := m.byID[change.Transaction.ID]; dup {
		return dom.Transaction{}, ErrDuplicateTransaction
	}

	u = cloneUser(u)
	u.Balance = change.NewBalance
	u.Version++
	if s := change.AddSubscription; s != nil {
		u.Subscriptions = append(u.Subscriptions, *s)
	}
	if change.RemoveSubID != "" {
		kept := u.Subscriptions[:0]
		for _, s := range u.Subscriptions {
			if s.ID != change.RemoveSubID {
				kept = append(kept, s)
			}
		}
		u.Subscriptions = kept
	}
	m.users[u.ID] = u
	return m.append(change.Transaction), nil
}

type memoryFunds struct{ m *MemoryStore }

func (r memoryFunds) GetByID(ctx context.Context, id string) (dom.Fund, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	f, ok := r.m.funds[id]
	if !ok {
		return dom.Fund{}, ErrNotFound
	}
	return f, nil
}

func (r memoryFunds) List(ctx context.Context) ([]dom.Fund, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	list := make([]dom.Fund, 0, len(r.m.funds))
	for _, f := range r.m.funds {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type memoryTxns struct{ m *MemoryStore }

func (r memoryTxns) Append(ctx context.Context, t dom.Transaction) (dom.Transaction, error) {
	m := r.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.byID[t.ID]; dup {
		return dom.Transaction{}, ErrDuplicateTransaction
	}
	return m.append(t), nil
}

func (r memoryTxns) GetByID(ctx context.Context, id string) (dom.Transaction, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	i, ok := r.m.byID[id]
	if !ok {
		return dom.Transaction{}, ErrNotFound
	}
	return r.m.txns[i], nil
}

// ListByUser returns the user's history in append order; seq is
// assigned monotonically, so this matches date-then-seq ordering.
func (r memoryTxns) ListByUser(ctx context.Context, userID string) ([]dom.Transaction, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var list []dom.Transaction
	for _, t := range r.m.txns {
		if t.UserID == userID {
			list = append(list, t)
		}
	}
	return list, nil
}

func (m *MemoryStore) append(t dom.Transaction) dom.Transaction {
	m.seq++
	t.Seq = m.seq
	m.byID[t.ID] = len(m.txns)
	m.txns = append(m.txns, t)
	return t
}

func cloneUser(u dom.User) dom.User {
	u.Channels = append([]string(nil), u.Channels...)
	u.Subscriptions = append([]dom.Subscription(nil), u.Subscriptions...)
	return u
}
