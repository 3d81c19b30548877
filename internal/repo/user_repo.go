package repo

import (
	"context"
	"errors"
	"time"

	dom "github.com/SixTanDev/BTG/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned by Apply when the stored user
	// version differs from the expected one. The caller may reload and
	// retry the whole operation.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicateTransaction is returned when a transaction with the
	// same id was already appended (idempotency key replay).
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)

// UserRepo provides user persistence. Apply writes a committed ledger
// change as one atomic unit: balance, subscription set, and the
// transaction record, guarded by an optimistic version check.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (dom.User, error)
	Apply(ctx context.Context, change dom.Change) (dom.Transaction, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByID returns the user with their active subscriptions. The join
// reads balance and subscription set in one statement, so one snapshot:
// a concurrent Apply can never show a debited balance without its
// subscription, or the reverse.
func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.name, u.email, u.phone, u.balance, u.version, u.channels, u.created_at, u.updated_at,
		        s.id, s.fund_id, s.amount, s.subscribed_at
		 FROM users u
		 LEFT JOIN subscriptions s ON s.user_id = u.id
		 WHERE u.id = $1
		 ORDER BY s.subscribed_at`,
		id,
	)
	if err != nil {
		return dom.User{}, err
	}
	defer rows.Close()
	return scanUser(rows)
}

// scanUser builds the user from the joined result set. Subscription
// columns are NULL when the user has none.
func scanUser(rows pgx.Rows) (dom.User, error) {
	var u dom.User
	found := false
	for rows.Next() {
		var (
			subID, fundID *string
			amount        *int64
			subscribedAt  *time.Time
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Balance, &u.Version, &u.Channels,
			&u.CreatedAt, &u.UpdatedAt, &subID, &fundID, &amount, &subscribedAt); err != nil {
			return dom.User{}, err
		}
		found = true
		if subID != nil {
			u.Subscriptions = append(u.Subscriptions, dom.Subscription{
				ID:           *subID,
				FundID:       *fundID,
				Amount:       *amount,
				SubscribedAt: *subscribedAt,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return dom.User{}, err
	}
	if !found {
		return dom.User{}, ErrNotFound
	}
	return u, nil
}

// Apply commits the change in one database transaction. The user row
// update carries the version check; zero rows affected means a
// concurrent writer won and the caller must retry.
func (r *PGUserRepo) Apply(ctx context.Context, change dom.Change) (dom.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return dom.Transaction{}, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE users SET balance = $2, version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND version = $3`,
		change.UserID, change.NewBalance, change.ExpectedVersion,
	)
	if err != nil {
		return dom.Transaction{}, err
	}
	if tag.RowsAffected() == 0 {
		return dom.Transaction{}, ErrVersionConflict
	}

	if s := change.AddSubscription; s != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO subscriptions (id, user_id, fund_id, amount, subscribed_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.ID, change.UserID, s.FundID, s.Amount, s.SubscribedAt,
		)
		if err != nil {
			return dom.Transaction{}, err
		}
	}
	if change.RemoveSubID != "" {
		_, err = tx.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, change.RemoveSubID)
		if err != nil {
			return dom.Transaction{}, err
		}
	}

	out, err := insertTransaction(ctx, tx, change.Transaction)
	if err != nil {
		return dom.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return dom.Transaction{}, err
	}
	return out, nil
}

func insertTransaction(ctx context.Context, q querier, t dom.Transaction) (dom.Transaction, error) {
	err := q.QueryRow(ctx,
		`INSERT INTO transactions (id, user_id, fund_id, kind, amount, balance_after, status, reason, subscription_id, date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING seq`,
		t.ID, t.UserID, t.FundID, t.Kind, t.Amount, t.BalanceAfter,
		t.Status, t.Reason, t.SubscriptionID, t.Date,
	).Scan(&t.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Transaction{}, ErrDuplicateTransaction
		}
		return dom.Transaction{}, err
	}
	return t, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
