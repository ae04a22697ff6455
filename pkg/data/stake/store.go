package stake

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrEntryNotFound indicates no stake entry exists for the owner.
	ErrEntryNotFound = errors.New("stake entry not found")

	// ErrInsufficientStake indicates a subtraction was requested for more than
	// the owner's currently staked amount.
	ErrInsufficientStake = errors.New("insufficient staked amount")

	// ErrAmountOverflow indicates an addition would wrap the staked amount.
	ErrAmountOverflow = errors.New("staked amount overflows u64")
)

type Store interface {
	// GetOrCreate idempotently gets the owner's stake entry, creating it with
	// amount 0 when absent.
	GetOrCreate(ctx context.Context, owner string) (*Record, error)

	// Get gets the owner's stake entry. ErrEntryNotFound is returned if no
	// entry exists.
	Get(ctx context.Context, owner string) (*Record, error)

	// Add atomically increments the owner's staked amount using checked
	// arithmetic. ErrEntryNotFound is returned if no entry exists, and
	// ErrAmountOverflow if the new amount would wrap.
	Add(ctx context.Context, owner string, amount uint64) (*Record, error)

	// Subtract atomically decrements the owner's staked amount, enforcing the
	// precondition within the same atomic unit. ErrInsufficientStake is
	// returned when the entry is absent or holds less than amount.
	Subtract(ctx context.Context, owner string, amount uint64) (*Record, error)

	// GetTotalStaked returns the sum of all staked amounts across all entries.
	GetTotalStaked(ctx context.Context) (uint64, error)
}
