package staking

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInsufficientBalance indicates a stake was requested for more than the
	// user's liquid token balance. No state was changed.
	ErrInsufficientBalance = errors.New("insufficient liquid balance")

	// ErrExcessiveUnstake indicates an unstake was requested for more than the
	// user's staked amount. No state was changed.
	ErrExcessiveUnstake = errors.New("unstake amount exceeds staked amount")

	// ErrSetupConflict indicates InitializeMint was called against an already
	// initialized mint. The original mint and vault are untouched.
	ErrSetupConflict = errors.New("mint already initialized")

	// ErrArithmeticOverflow indicates a stake entry increment would wrap.
	ErrArithmeticOverflow = errors.New("stake entry amount overflow")

	// ErrArithmeticUnderflow indicates a stake entry decrement would wrap.
	// Precondition checks make this unreachable in practice; the decrement is
	// still checked rather than trusted.
	ErrArithmeticUnderflow = errors.New("stake entry amount underflow")

	// ErrAirdropsDisabled indicates airdrops are turned off by configuration.
	ErrAirdropsDisabled = errors.New("airdrops are disabled")

	// ErrAirdropLimitExceeded indicates the requested airdrop amount exceeds
	// the configured per-request maximum.
	ErrAirdropLimitExceeded = errors.New("airdrop amount exceeds per-request maximum")

	// ErrLedgerOperationFailed indicates an external ledger call failed and
	// the entire operation was aborted. Match with errors.Is; the underlying
	// ledger error is available via errors.Unwrap.
	ErrLedgerOperationFailed = errors.New("ledger operation failed")
)

type ledgerOperationError struct {
	operation string
	cause     error
}

func newLedgerOperationError(operation string, cause error) error {
	return &ledgerOperationError{
		operation: operation,
		cause:     cause,
	}
}

func (e *ledgerOperationError) Error() string {
	return fmt.Sprintf("ledger %s failed: %v", e.operation, e.cause)
}

func (e *ledgerOperationError) Unwrap() error {
	return e.cause
}

func (e *ledgerOperationError) Is(target error) bool {
	return target == ErrLedgerOperationFailed
}
