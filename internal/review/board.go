package review

import (
	"sort"
	"sync"

	"github.com/cardwatch-dev/cardwatch/internal/batch"
	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// Board holds the outcomes that need a reviewer's attention, keyed by
// transaction id. The latest outcome for a transaction replaces earlier ones.
type Board struct {
	mu       sync.RWMutex
	outcomes map[string]model.Outcome
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{outcomes: make(map[string]model.Outcome)}
}

// Put records o. Outcomes that do not need attention remove any earlier
// entry for the same transaction.
func (b *Board) Put(o model.Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !o.NeedsAttention() {
		delete(b.outcomes, o.Transaction.ID)
		return
	}
	b.outcomes[o.Transaction.ID] = o
}

// Get returns the outcome for a transaction id.
func (b *Board) Get(txnID string) (model.Outcome, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.outcomes[txnID]
	return o, ok
}

// Len returns the number of outcomes on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.outcomes)
}

// List returns the outcomes ordered by their transactions under cfg.
// Transactions that compare equal are ordered by id so output is stable.
func (b *Board) List(cfg model.SortConfig) []model.Outcome {
	b.mu.RLock()
	out := make([]model.Outcome, 0, len(b.outcomes))
	for _, o := range b.outcomes {
		out = append(out, o)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Transaction.ID < out[j].Transaction.ID })
	sort.SliceStable(out, func(i, j int) bool {
		return batch.Less(out[i].Transaction, out[j].Transaction, cfg)
	})
	return out
}
