package batch

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

func txn(id, date, amount string) model.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{ID: id, Date: d, Amount: decimal.RequireFromString(amount)}
}

func sample() []model.Transaction {
	return []model.Transaction{
		txn("1", "2023-05-01", "1500"),
		txn("2", "2023-05-02", "2000"),
		txn("3", "2023-05-03", "3000"),
		txn("4", "2023-05-03", "3000"),
		txn("5", "2023-04-30", "99.5"),
	}
}

func ids(txns []model.Transaction) []string {
	out := make([]string, len(txns))
	for i, t := range txns {
		out[i] = t.ID
	}
	return out
}

func TestNew_DuplicateID(t *testing.T) {
	txns := sample()
	txns[4].ID = "2"
	_, err := New(txns)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate transaction id "2"`)
}

func TestNew_EmptyID(t *testing.T) {
	_, err := New([]model.Transaction{{}})
	assert.Error(t, err)
}

func TestGet(t *testing.T) {
	b, err := New(sample())
	require.NoError(t, err)
	assert.Equal(t, 5, b.Len())

	got, err := b.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "3000", got.Amount.String())

	_, err = b.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSorted_DateDesc(t *testing.T) {
	b, err := New(sample())
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4", "2", "1", "5"}, ids(b.Sorted(model.DefaultSort)))
}

func TestSorted_DateAsc(t *testing.T) {
	b, err := New(sample())
	require.NoError(t, err)
	got := b.Sorted(model.SortConfig{Key: model.SortByDate, Direction: model.SortAsc})
	assert.Equal(t, []string{"5", "1", "2", "3", "4"}, ids(got))
}

func TestSorted_AmountNumeric(t *testing.T) {
	b, err := New(sample())
	require.NoError(t, err)

	asc := b.Sorted(model.SortConfig{Key: model.SortByAmount, Direction: model.SortAsc})
	assert.Equal(t, []string{"5", "1", "2", "3", "4"}, ids(asc))

	desc := b.Sorted(model.SortConfig{Key: model.SortByAmount, Direction: model.SortDesc})
	assert.Equal(t, []string{"3", "4", "2", "1", "5"}, ids(desc))
}

func TestSorted_DoesNotMutate(t *testing.T) {
	b, err := New(sample())
	require.NoError(t, err)
	_ = b.Sorted(model.SortConfig{Key: model.SortByAmount, Direction: model.SortDesc})
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(b.All()))
}
