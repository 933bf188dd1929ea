package batch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// ErrNotFound is returned when a transaction id is not in the batch.
var ErrNotFound = errors.New("transaction not found")

// Batch is an immutable set of transactions loaded from one source file.
type Batch struct {
	txns  []model.Transaction
	index map[string]int
}

// New indexes txns by id. Duplicate or empty ids are rejected.
func New(txns []model.Transaction) (*Batch, error) {
	index := make(map[string]int, len(txns))
	for i, txn := range txns {
		if txn.ID == "" {
			return nil, fmt.Errorf("transaction %d has no id", i+1)
		}
		if prev, ok := index[txn.ID]; ok {
			return nil, fmt.Errorf("duplicate transaction id %q (rows %d and %d)", txn.ID, prev+1, i+1)
		}
		index[txn.ID] = i
	}
	return &Batch{txns: txns, index: index}, nil
}

// Len returns the number of transactions.
func (b *Batch) Len() int { return len(b.txns) }

// Get returns the transaction with the given id.
func (b *Batch) Get(id string) (model.Transaction, error) {
	i, ok := b.index[id]
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b.txns[i], nil
}

// All returns the transactions in source order.
func (b *Batch) All() []model.Transaction {
	out := make([]model.Transaction, len(b.txns))
	copy(out, b.txns)
	return out
}

// Sorted returns a copy of the transactions ordered by cfg.
func (b *Batch) Sorted(cfg model.SortConfig) []model.Transaction {
	out := b.All()
	Sort(out, cfg)
	return out
}

// Sort orders txns in place. Equal keys keep their relative order.
func Sort(txns []model.Transaction, cfg model.SortConfig) {
	sort.SliceStable(txns, func(i, j int) bool {
		return Less(txns[i], txns[j], cfg)
	})
}

// Less reports whether a sorts before b under cfg.
func Less(a, b model.Transaction, cfg model.SortConfig) bool {
	var c int
	switch cfg.Key {
	case model.SortByAmount:
		c = a.Amount.Cmp(b.Amount)
	default:
		c = a.Date.Compare(b.Date)
	}
	if cfg.Direction == model.SortDesc {
		return c > 0
	}
	return c < 0
}
