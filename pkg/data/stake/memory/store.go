package memory

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/code-payments/stake-server/pkg/data/stake"
)

type store struct {
	mu      sync.Mutex
	records map[string]*stake.Record
	last    uint64
}

// New returns a new in memory stake.Store
func New() stake.Store {
	return &store{
		records: make(map[string]*stake.Record),
	}
}

// GetOrCreate implements stake.Store.GetOrCreate
func (s *store) GetOrCreate(_ context.Context, owner string) (*stake.Record, error) {
	record := &stake.Record{Owner: owner}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.records[owner]; ok {
		cloned := item.Clone()
		return &cloned, nil
	}

	s.last++
	record.Id = s.last
	record.CreatedAt = time.Now()
	record.LastUpdatedAt = record.CreatedAt
	s.records[owner] = record

	cloned := record.Clone()
	return &cloned, nil
}

// Get implements stake.Store.Get
func (s *store) Get(_ context.Context, owner string) (*stake.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[owner]
	if !ok {
		return nil, stake.ErrEntryNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// Add implements stake.Store.Add
func (s *store) Add(_ context.Context, owner string, amount uint64) (*stake.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[owner]
	if !ok {
		return nil, stake.ErrEntryNotFound
	}

	if amount > math.MaxUint64-item.Amount {
		return nil, stake.ErrAmountOverflow
	}

	item.Amount += amount
	item.LastUpdatedAt = time.Now()

	cloned := item.Clone()
	return &cloned, nil
}

// Subtract implements stake.Store.Subtract
func (s *store) Subtract(_ context.Context, owner string, amount uint64) (*stake.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.records[owner]
	if !ok {
		return nil, stake.ErrInsufficientStake
	}

	if item.Amount < amount {
		return nil, stake.ErrInsufficientStake
	}

	item.Amount -= amount
	item.LastUpdatedAt = time.Now()

	cloned := item.Clone()
	return &cloned, nil
}

// GetTotalStaked implements stake.Store.GetTotalStaked
func (s *store) GetTotalStaked(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total uint64
	for _, item := range s.records {
		total += item.Amount
	}
	return total, nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*stake.Record)
	s.last = 0
}
