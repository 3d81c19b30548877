package repo

import (
	"context"
	"errors"

	dom "github.com/SixTanDev/BTG/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepo is the append-only transaction history store. Append is
// idempotent by transaction id.
type TxRepo interface {
	Append(ctx context.Context, t dom.Transaction) (dom.Transaction, error)
	GetByID(ctx context.Context, id string) (dom.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]dom.Transaction, error)
}

// PGTxRepo implements TxRepo with Postgres.
type PGTxRepo struct {
	db *pgxpool.Pool
}

// NewPGTxRepo returns a new PGTxRepo.
func NewPGTxRepo(db *pgxpool.Pool) *PGTxRepo {
	return &PGTxRepo{db: db}
}

// Append inserts the transaction and returns it with its assigned seq.
// A replayed id yields ErrDuplicateTransaction and no write.
func (r *PGTxRepo) Append(ctx context.Context, t dom.Transaction) (dom.Transaction, error) {
	return insertTransaction(ctx, r.db, t)
}

// GetByID returns a transaction by id.
func (r *PGTxRepo) GetByID(ctx context.Context, id string) (dom.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx,
		txColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Transaction{}, ErrNotFound
	}
	return t, err
}

// ListByUser returns the user's history ordered by date, then seq, so
// records written in the same instant keep their append order.
func (r *PGTxRepo) ListByUser(ctx context.Context, userID string) ([]dom.Transaction, error) {
	rows, err := r.db.Query(ctx,
		txColumns+` FROM transactions WHERE user_id = $1 ORDER BY date, seq`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

const txColumns = `SELECT seq, id, user_id, fund_id, kind, amount, balance_after, status, reason, subscription_id, date`

func scanTransaction(row pgx.Row) (dom.Transaction, error) {
	var t dom.Transaction
	err := row.Scan(&t.Seq, &t.ID, &t.UserID, &t.FundID, &t.Kind, &t.Amount,
		&t.BalanceAfter, &t.Status, &t.Reason, &t.SubscriptionID, &t.Date)
	return t, err
}
