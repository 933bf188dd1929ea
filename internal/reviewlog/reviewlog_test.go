package reviewlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:     testTime,
		ReviewID:      "0b7e1c2a-8d9f-4a5b-9c3d-1e2f3a4b5c6d",
		TransactionID: "c81755dbbbea9d5c77f094348a7579be",
		Status:        model.StatusReview,
		Prediction:    1,
		Probability:   0.55,
		Provider:      "template",
		Explanation:   "1. Unusual merchant,\n2. High amount",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusReview, entries[0].Status)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Status = model.StatusFlagged
	e2.Explanation = ""
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.StatusReview, entries[0].Status)
	assert.Equal(t, model.StatusFlagged, entries[1].Status)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.ReviewID, got.ReviewID)
	assert.Equal(t, original.TransactionID, got.TransactionID)
	assert.Equal(t, original.Prediction, got.Prediction)
	assert.InDelta(t, original.Probability, got.Probability, 0.0001)
	assert.Equal(t, original.Provider, got.Provider)
	assert.Equal(t, original.Explanation, got.Explanation, "multi-line explanations survive quoting")
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review-log.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 8 fields")
}

func TestMarshalEntry_Format(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2025-01-15T10:30:00Z", row[colTimestamp])
	assert.Equal(t, "0.5500", row[colProbability])
	assert.Equal(t, "review", row[colStatus])
}

func TestLog_Record(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := Log{Dir: dir}
	o := model.Outcome{
		ReviewID:    "r1",
		Transaction: model.Transaction{ID: "t1"},
		Score:       model.Score{Prediction: 1, Probability: 0.91},
		Status:      model.StatusFlagged,
		ProcessedAt: testTime,
	}
	require.NoError(t, l.Record(o))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "t1", entries[0].TransactionID)
	assert.Equal(t, model.StatusFlagged, entries[0].Status)
}

func TestLatest(t *testing.T) {
	a1 := Entry{TransactionID: "a", Status: model.StatusReview}
	b1 := Entry{TransactionID: "b", Status: model.StatusFlagged}
	a2 := Entry{TransactionID: "a", Status: model.StatusApproved}

	got := Latest([]Entry{a1, b1, a2})
	require.Len(t, got, 2)
	assert.Equal(t, b1, got[0])
	assert.Equal(t, a2, got[1])
}
