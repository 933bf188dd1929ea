package reviewlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// Entry is one row in the review log.
type Entry struct {
	Timestamp     time.Time
	ReviewID      string
	TransactionID string
	Status        model.Status
	Prediction    int
	Probability   float64
	Provider      string
	Explanation   string
}

// Header is the CSV header for review-log.csv.
const Header = "timestamp,review_id,transaction_id,status,prediction,probability,provider,explanation"

const (
	numFields        = 8
	logFile          = "review-log.csv"
	colTimestamp     = 0
	colReviewID      = 1
	colTransactionID = 2
	colStatus        = 3
	colPrediction    = 4
	colProbability   = 5
	colProvider      = 6
	colExplanation   = 7
)

// FromOutcome converts a review outcome to a log entry.
func FromOutcome(o model.Outcome) Entry {
	return Entry{
		Timestamp:     o.ProcessedAt,
		ReviewID:      o.ReviewID,
		TransactionID: o.Transaction.ID,
		Status:        o.Status,
		Prediction:    o.Score.Prediction,
		Probability:   o.Score.Probability,
		Provider:      o.Provider,
		Explanation:   o.Explanation,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colReviewID] = e.ReviewID
	row[colTransactionID] = e.TransactionID
	row[colStatus] = string(e.Status)
	row[colPrediction] = strconv.Itoa(e.Prediction)
	row[colProbability] = strconv.FormatFloat(e.Probability, 'f', 4, 64)
	row[colProvider] = e.Provider
	row[colExplanation] = e.Explanation
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	pred, err := strconv.Atoi(record[colPrediction])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing prediction %q: %w", record[colPrediction], err)
	}
	prob, err := strconv.ParseFloat(record[colProbability], 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing probability %q: %w", record[colProbability], err)
	}

	return Entry{
		Timestamp:     ts,
		ReviewID:      record[colReviewID],
		TransactionID: record[colTransactionID],
		Status:        model.Status(record[colStatus]),
		Prediction:    pred,
		Probability:   prob,
		Provider:      record[colProvider],
		Explanation:   record[colExplanation],
	}, nil
}

// Log appends outcomes to <Dir>/review-log.csv.
type Log struct {
	Dir string
}

// Record appends o to the log.
func (l Log) Record(o model.Outcome) error {
	return Append(l.Dir, []Entry{FromOutcome(o)})
}

// Path returns the log file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, logFile)
}

// Append writes entries to <dir>/review-log.csv, creating the file and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := Path(dir)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening review log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/review-log.csv.
// Returns an empty slice if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening review log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// Latest returns the most recent entry per transaction, in log order of
// their last appearance.
func Latest(entries []Entry) []Entry {
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.TransactionID] = i
	}
	var out []Entry
	for i, e := range entries {
		if last[e.TransactionID] == i {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading review log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
