package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/stake-server/pkg/data/stake"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres stake.Store
func New(db *sql.DB) stake.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// GetOrCreate implements stake.Store.GetOrCreate
func (s *store) GetOrCreate(ctx context.Context, owner string) (*stake.Record, error) {
	model, err := toModel(&stake.Record{Owner: owner})
	if err != nil {
		return nil, err
	}

	if err := model.dbGetOrCreate(ctx, s.db); err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// Get implements stake.Store.Get
func (s *store) Get(ctx context.Context, owner string) (*stake.Record, error) {
	model, err := dbGet(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// Add implements stake.Store.Add
func (s *store) Add(ctx context.Context, owner string, amount uint64) (*stake.Record, error) {
	model, err := dbAdd(ctx, s.db, owner, amount)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// Subtract implements stake.Store.Subtract
func (s *store) Subtract(ctx context.Context, owner string, amount uint64) (*stake.Record, error) {
	model, err := dbSubtract(ctx, s.db, owner, amount)
	if err != nil {
		return nil, err
	}
	return fromModel(model), nil
}

// GetTotalStaked implements stake.Store.GetTotalStaked
func (s *store) GetTotalStaked(ctx context.Context) (uint64, error) {
	return dbGetTotalStaked(ctx, s.db)
}
