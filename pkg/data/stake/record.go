package stake

import (
	"time"

	"github.com/pkg/errors"
)

// Record is a per-owner stake ledger entry. Entries are created lazily on
// first stake and never deleted, so their existence doubles as a "has ever
// staked" marker.
type Record struct {
	Id uint64

	Owner  string
	Amount uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Owner:  r.Owner,
		Amount: r.Amount,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Owner = r.Owner
	dst.Amount = r.Amount

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}
