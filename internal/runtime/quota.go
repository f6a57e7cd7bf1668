package runtime

import "fmt"

// BlockQuota caps the number of calls applied in one block.
//
// A limit of zero or less disables the quota.
type BlockQuota struct {
	limit int
	used  int
}

// NewBlockQuota creates a quota allowing limit calls per block.
func NewBlockQuota(limit int) *BlockQuota {
	return &BlockQuota{limit: limit}
}

// Check reserves one call slot, failing with E_BLOCK_FULL once the block is full.
func (q *BlockQuota) Check(block uint64) error {
	if q.limit > 0 && q.used >= q.limit {
		return &Error{
			Code:    ErrCodeBlockFull,
			Message: fmt.Sprintf("block %d already holds %d calls", block, q.limit),
		}
	}
	q.used++
	return nil
}

// Release returns a slot reserved by Check for a call that was not applied.
func (q *BlockQuota) Release() {
	if q.used > 0 {
		q.used--
	}
}

// Reset starts a new block.
func (q *BlockQuota) Reset() {
	q.used = 0
}

// Used returns the slots taken in the current block.
func (q *BlockQuota) Used() int {
	return q.used
}

// Limit returns the per-block limit.
func (q *BlockQuota) Limit() int {
	return q.limit
}
