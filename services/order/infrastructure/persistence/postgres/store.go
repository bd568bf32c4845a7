package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/services/order/domain/repositories"
	"github.com/ghuser/ordermgmt/services/order/infrastructure/persistence/postgres/db"
)

// Store implements repositories.UnitOfWork against PostgreSQL. Each Do call
// is one read-committed transaction with a bounded lock wait; conflicting
// transactions are retried by database.WithTx.
type Store struct {
	db *database.Database
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(d *database.Database) *Store {
	return &Store{db: d}
}

// Do runs fn in a single transaction.
func (s *Store) Do(ctx context.Context, fn func(r repositories.Repos) error) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(bind(db.New(tx)))
	})
}

// Reader returns repositories that run each call on the pool. Lock on these
// repositories holds the row only for the statement's implicit transaction.
func (s *Store) Reader() repositories.Repos {
	return bind(db.New(s.db.DB()))
}

func bind(q *db.Queries) repositories.Repos {
	return repositories.Repos{
		Stock:    &StockRepository{q: q},
		Orders:   &OrderRepository{q: q},
		Products: &ProductRepository{q: q},
	}
}

// BuyerDirectory resolves buyer email addresses from the accounts table.
type BuyerDirectory struct {
	q *db.Queries
}

// NewBuyerDirectory returns a BuyerDirectory backed by the given connection pool.
func NewBuyerDirectory(d *database.Database) *BuyerDirectory {
	return &BuyerDirectory{q: db.New(d.DB())}
}

// Email returns the buyer's registered address.
func (d *BuyerDirectory) Email(ctx context.Context, buyerID uuid.UUID) (string, error) {
	email, err := d.q.GetBuyerEmail(ctx, buyerID)
	if err != nil {
		return "", fmt.Errorf("query buyer email: %w", err)
	}
	return email, nil
}
