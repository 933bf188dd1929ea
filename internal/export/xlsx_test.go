package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	o := model.Outcome{
		ReviewID: "r1",
		Transaction: model.Transaction{
			ID:        "t1",
			Date:      time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC),
			Amount:    decimal.RequireFromString("1500"),
			Merchant:  "Online Electronics Store",
			CardLast4: "1234",
		},
		Score:       model.Score{Prediction: 1, Probability: 0.55},
		Status:      model.StatusReview,
		Explanation: "1. Unusual merchant",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []Row{FromOutcome(o), {TransactionID: "t2", Status: model.StatusFlagged}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"r1", "t1", "2023-05-01 09:00:00", "1500.00", "Online Electronics Store", "****1234",
		"review", "1", "0.55", "1. Unusual merchant",
	}, rows[1])

	assert.Equal(t, "t2", rows[2][1])
	assert.Equal(t, "", rows[2][2], "unknown transactions leave details blank")
	assert.Equal(t, "flagged", rows[2][6])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
