package postgres

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/stake-server/pkg/data/stake"
	pgutil "github.com/code-payments/stake-server/pkg/database/postgres"
)

const (
	tableName = "stakeserver__core_stakeentry"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Owner string `db:"owner"`
	// Stored as the two's complement bigint image of the u64 amount. All
	// arithmetic and comparisons happen in Go under a row lock.
	Amount int64 `db:"amount"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *stake.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Owner:         obj.Owner,
		Amount:        int64(obj.Amount),
		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *stake.Record {
	return &stake.Record{
		Id:            uint64(obj.Id.Int64),
		Owner:         obj.Owner,
		Amount:        uint64(obj.Amount),
		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbGetOrCreate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		insertQuery := `INSERT INTO ` + tableName + `
			(owner, amount, created_at, last_updated_at)
			VALUES ($1, 0, $2, $2)
			ON CONFLICT (owner) DO NOTHING`

		now := time.Now()
		_, err := tx.ExecContext(ctx, insertQuery, m.Owner, now.UTC())
		if err != nil {
			return err
		}

		selectQuery := `SELECT
			id, owner, amount, created_at, last_updated_at
			FROM ` + tableName + `
			WHERE owner = $1
			LIMIT 1`

		return tx.GetContext(ctx, m, selectQuery, m.Owner)
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, owner string) (*model, error) {
	res := &model{}

	query := `SELECT
		id, owner, amount, created_at, last_updated_at
		FROM ` + tableName + `
		WHERE owner = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, owner)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, stake.ErrEntryNotFound)
	}
	return res, nil
}

func dbAdd(ctx context.Context, db *sqlx.DB, owner string, amount uint64) (*model, error) {
	res := &model{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		selectQuery := `SELECT
			id, owner, amount, created_at, last_updated_at
			FROM ` + tableName + `
			WHERE owner = $1
			FOR UPDATE`

		err := tx.GetContext(ctx, res, selectQuery, owner)
		if err != nil {
			return pgutil.CheckNoRows(err, stake.ErrEntryNotFound)
		}

		current := uint64(res.Amount)
		if amount > math.MaxUint64-current {
			return stake.ErrAmountOverflow
		}

		updateQuery := `UPDATE ` + tableName + `
			SET amount = $2, last_updated_at = $3
			WHERE owner = $1
			RETURNING id, owner, amount, created_at, last_updated_at`

		return tx.QueryRowxContext(
			ctx,
			updateQuery,
			owner,
			int64(current+amount),
			time.Now().UTC(),
		).StructScan(res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func dbSubtract(ctx context.Context, db *sqlx.DB, owner string, amount uint64) (*model, error) {
	res := &model{}

	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		selectQuery := `SELECT
			id, owner, amount, created_at, last_updated_at
			FROM ` + tableName + `
			WHERE owner = $1
			FOR UPDATE`

		err := tx.GetContext(ctx, res, selectQuery, owner)
		if err != nil {
			return pgutil.CheckNoRows(err, stake.ErrInsufficientStake)
		}

		current := uint64(res.Amount)
		if current < amount {
			return stake.ErrInsufficientStake
		}

		updateQuery := `UPDATE ` + tableName + `
			SET amount = $2, last_updated_at = $3
			WHERE owner = $1
			RETURNING id, owner, amount, created_at, last_updated_at`

		return tx.QueryRowxContext(
			ctx,
			updateQuery,
			owner,
			int64(current-amount),
			time.Now().UTC(),
		).StructScan(res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func dbGetTotalStaked(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var amounts []int64

	query := `SELECT amount FROM ` + tableName

	err := db.SelectContext(ctx, &amounts, query)
	if err != nil {
		return 0, err
	}

	// Summed in Go because amounts are bigint images of u64 values. The pool
	// conservation invariant bounds the true total to a u64.
	var total uint64
	for _, amount := range amounts {
		total += uint64(amount)
	}
	return total, nil
}
