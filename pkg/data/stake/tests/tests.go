package tests

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/stake-server/pkg/data/stake"
)

func RunTests(t *testing.T, s stake.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s stake.Store){
		testGetOrCreate,
		testAddAndSubtract,
		testSubtractPreconditions,
		testCheckedArithmetic,
		testGetTotalStaked,
	} {
		tf(t, s)
		teardown()
	}
}

func testGetOrCreate(t *testing.T, s stake.Store) {
	t.Run("testGetOrCreate", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "owner")
		assert.Equal(t, stake.ErrEntryNotFound, err)

		created, err := s.GetOrCreate(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, "owner", created.Owner)
		assert.EqualValues(t, 0, created.Amount)

		// Idempotent
		fetched, err := s.GetOrCreate(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, created.Id, fetched.Id)
		assert.EqualValues(t, 0, fetched.Amount)

		fetched, err = s.Get(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, "owner", fetched.Owner)

		_, err = s.GetOrCreate(ctx, "")
		assert.Error(t, err)
	})
}

func testAddAndSubtract(t *testing.T, s stake.Store) {
	t.Run("testAddAndSubtract", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Add(ctx, "owner", 100)
		assert.Equal(t, stake.ErrEntryNotFound, err)

		_, err = s.GetOrCreate(ctx, "owner")
		require.NoError(t, err)

		record, err := s.Add(ctx, "owner", 400)
		require.NoError(t, err)
		assert.EqualValues(t, 400, record.Amount)

		record, err = s.Add(ctx, "owner", 100)
		require.NoError(t, err)
		assert.EqualValues(t, 500, record.Amount)

		record, err = s.Subtract(ctx, "owner", 500)
		require.NoError(t, err)
		assert.EqualValues(t, 0, record.Amount)

		// Entry persists at amount 0
		record, err = s.Get(ctx, "owner")
		require.NoError(t, err)
		assert.EqualValues(t, 0, record.Amount)
	})
}

func testSubtractPreconditions(t *testing.T, s stake.Store) {
	t.Run("testSubtractPreconditions", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Subtract(ctx, "owner", 1)
		assert.Equal(t, stake.ErrInsufficientStake, err)

		_, err = s.GetOrCreate(ctx, "owner")
		require.NoError(t, err)

		_, err = s.Add(ctx, "owner", 400)
		require.NoError(t, err)

		_, err = s.Subtract(ctx, "owner", 401)
		assert.Equal(t, stake.ErrInsufficientStake, err)

		// State unchanged after the rejection
		record, err := s.Get(ctx, "owner")
		require.NoError(t, err)
		assert.EqualValues(t, 400, record.Amount)
	})
}

func testCheckedArithmetic(t *testing.T, s stake.Store) {
	t.Run("testCheckedArithmetic", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetOrCreate(ctx, "owner")
		require.NoError(t, err)

		_, err = s.Add(ctx, "owner", math.MaxUint64)
		require.NoError(t, err)

		_, err = s.Add(ctx, "owner", 1)
		assert.Equal(t, stake.ErrAmountOverflow, err)

		record, err := s.Get(ctx, "owner")
		require.NoError(t, err)
		assert.EqualValues(t, uint64(math.MaxUint64), record.Amount)
	})
}

func testGetTotalStaked(t *testing.T, s stake.Store) {
	t.Run("testGetTotalStaked", func(t *testing.T) {
		ctx := context.Background()

		total, err := s.GetTotalStaked(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)

		for i, amount := range []uint64{400, 250, 350} {
			owner := string(rune('a' + i))

			_, err = s.GetOrCreate(ctx, owner)
			require.NoError(t, err)

			_, err = s.Add(ctx, owner, amount)
			require.NoError(t, err)
		}

		total, err = s.GetTotalStaked(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1000, total)

		_, err = s.Subtract(ctx, "b", 250)
		require.NoError(t, err)

		total, err = s.GetTotalStaked(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 750, total)
	})
}
