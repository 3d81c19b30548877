package repo

import (
	"context"
	"errors"

	dom "github.com/SixTanDev/BTG/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FundRepo provides read access to the fund catalog.
type FundRepo interface {
	GetByID(ctx context.Context, id string) (dom.Fund, error)
	List(ctx context.Context) ([]dom.Fund, error)
}

// PGFundRepo implements FundRepo with Postgres.
type PGFundRepo struct {
	db *pgxpool.Pool
}

// NewPGFundRepo returns a new PGFundRepo.
func NewPGFundRepo(db *pgxpool.Pool) *PGFundRepo {
	return &PGFundRepo{db: db}
}

// GetByID returns the fund by id.
func (r *PGFundRepo) GetByID(ctx context.Context, id string) (dom.Fund, error) {
	var f dom.Fund
	err := r.db.QueryRow(ctx,
		`SELECT id, name, category, minimum_amount FROM funds WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.Name, &f.Category, &f.MinimumAmount)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Fund{}, ErrNotFound
	}
	return f, err
}

// List returns the full catalog ordered by name.
func (r *PGFundRepo) List(ctx context.Context) ([]dom.Fund, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, category, minimum_amount FROM funds ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Fund
	for rows.Next() {
		var f dom.Fund
		if err := rows.Scan(&f.ID, &f.Name, &f.Category, &f.MinimumAmount); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}
